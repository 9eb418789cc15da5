package sbdyn

// Disturbances are the external force and torque acting on the vehicle besides gravity.
type Disturbances struct {
	Force  func(t float64, rN, vN []float64) []float64            // applied at the vehicle COM, N frame
	Torque func(t float64, sigmaBN *MRP, omegaBN []float64) []float64 // about B, B frame
}

func (d Disturbances) isEmpty() bool {
	return d.Force == nil && d.Torque == nil
}

// Perturb returns the disturbance force (N frame) and torque about B (B frame).
func (d Disturbances) Perturb(t float64, rN, vN []float64, sigmaBN *MRP, omegaBN []float64) (forceN, torqueB []float64) {
	forceN = []float64{0, 0, 0}
	torqueB = []float64{0, 0, 0}
	if d.isEmpty() {
		return
	}
	if d.Force != nil {
		forceN = d.Force(t, rN, vN)
	}
	if d.Torque != nil {
		torqueB = d.Torque(t, sigmaBN, omegaBN)
	}
	return
}

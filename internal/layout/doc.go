// Package layout loads the static house layout: the set of nodes (the Atn,
// the Scada, relays, sensors, the power meter and the home-alone actor),
// their roles and their hardware components.
//
// A Layout is built once at startup from a YAML file and passed explicitly
// to the codec, the core and every actor. It is never mutated after Load
// returns, so it is safe to read from any goroutine.
//
//	lay, err := layout.Load("configs/layout.yaml")
//	if err != nil {
//	    return err // fatal: wiring would be incomplete
//	}
//	for _, n := range lay.BooleanActuators() {
//	    fmt.Println(n.Alias)
//	}
package layout

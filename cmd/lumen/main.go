// Lumen - spectral and photometric light calibration
//
// Lumen converts light-source specifications (spectra, colour temperatures,
// LED datasheet ratings) into the colour and brightness parameters a
// real-time renderer consumes.
package main

import (
	"github.com/jmylchreest/lumen/internal/cli"
)

func main() {
	cli.Execute()
}

// SPDX-License-Identifier: EPL-2.0

package client_test

import (
	"fmt"

	"github.com/ik5/gbdclient/client"
)

// Example_null shows the pass-through contract every Plugin honors.
func Example_null() {
	var p client.Plugin = client.NewNull()

	if err := p.Init(44100); err != nil {
		fmt.Println(err)
		return
	}
	defer p.Close()

	src := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	dst := make([]float32, len(src))

	frames := p.Transfer(dst, src, 3)
	fmt.Println("frames:", frames)
	fmt.Println("dst:", dst)
	// Output:
	// frames: 3
	// dst: [0.1 -0.1 0.2 -0.2 0.3 -0.3]
}

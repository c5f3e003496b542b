// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"

	"github.com/ik5/gbdclient/audio"
	"github.com/ik5/gbdclient/internal/audiotest"
)

func ExampleNewStereoMixer() {
	mono := audiotest.Ramp(22050, 1, 4, 10)

	stream := audio.NewStereoMixer(mono)
	defer stream.Close()

	buf := make([]float32, 8)
	n, _ := stream.ReadSamples(buf)
	fmt.Println(stream.Channels(), buf[:n])
	// Output:
	// 2 [0 0 0.1 0.1 0.2 0.2 0.3 0.3]
}

func ExampleResample() {
	src := audiotest.Constant(48000, 2, 4800, 0.5)

	stream := audio.Resample(src, 44100)
	fmt.Println(stream.SampleRate(), stream.Channels())
	// Output:
	// 44100 2
}

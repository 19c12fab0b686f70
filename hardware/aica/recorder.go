// This file is part of WashingtonDC.
//
// WashingtonDC is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// WashingtonDC is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with WashingtonDC.  If not, see <https://www.gnu.org/licenses/>.

package aica

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// the AICA's native sample rate.
const sampleRate = 44100

// Recorder captures the PCM data of every keyed-on channel into a WAV
// file. enabled with the aica.wavdump config key.
type Recorder struct {
	samples []int
}

// NewRecorder is the preferred method of initialisation for the Recorder
// type.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (rec *Recorder) captureChannel(a *AICA, ch *Channel) {
	pcm := a.samplePCM16(ch)
	if pcm == nil {
		logger.Logf("aica", "skipping capture of non-PCM16 channel (fmt=%d)", ch.Fmt)
		return
	}
	rec.samples = append(rec.samples, pcm...)
}

// Save writes the captured samples to a WAV file.
func (rec *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return curated.Errorf(curated.FileIO, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           rec.samples,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return curated.Errorf(curated.FileIO, err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf(curated.FileIO, err)
	}

	logger.Logf("aica", "wrote %d samples to %s", len(rec.samples), path)
	return nil
}

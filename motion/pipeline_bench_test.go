package motion

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// BenchmarkPipelineProcess measures one full analysis cycle at VGA size,
// alternating two frames so every cycle exercises the blob stages.
func BenchmarkPipelineProcess(b *testing.B) {
	p := NewPipeline(PipelineConfig{})
	defer p.Close()

	static := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer static.Close()
	static.SetTo(gocv.NewScalar(128, 128, 128, 0))

	moving := static.Clone()
	defer moving.Close()
	region := moving.Region(image.Rect(200, 150, 280, 230))
	region.SetTo(gocv.NewScalar(255, 255, 255, 0))
	region.Close()

	frames := []gocv.Mat{static, moving}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Process(frames[i%2]); err != nil {
			b.Fatal(err)
		}
	}
}

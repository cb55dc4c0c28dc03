package encoder

import (
	"fmt"
	"strconv"
)

const (
	defaultBinary    = "ffmpeg"
	defaultFrameRate = 3
)

// outputArgs is the FLV/h264 tail shared by the live and file commands.
var outputArgs = []string{
	"-c:a", "aac",
	"-b:a", "128k",
	"-strict", "experimental",
	"-f", "flv",
	"-b:v", "8000k",
	"-vcodec", "h264",
	"-preset", "ultrafast",
	"-g", "60",
	"-s", "1920x1080",
}

// Args builds the live command that overlays the looped overlay image on the camera
// input and pushes the result to output.
func (c Config) Args(output string) []string {
	rate := c.FrameRate
	if rate <= 0 {
		rate = defaultFrameRate
	}
	filter := fmt.Sprintf("[0:v]%sscale=%d:%d[scaled];[scaled][1:v]overlay[outv]",
		c.FineTune, c.Resolution.X, c.Resolution.Y)

	args := []string{
		"-re",
		"-rtsp_transport", "tcp",
		"-i", c.Input,
		"-f", "image2",
		"-framerate", strconv.Itoa(rate),
		"-loop", "1",
		"-i", c.OverlayPath,
		"-filter_complex", filter,
		"-map", "[outv]",
		"-map", "0:a",
	}
	args = append(args, outputArgs...)
	return append(args, output)
}

// FileArgs builds the command that streams a prerecorded file to output.
func FileArgs(file, output string) []string {
	args := []string{"-re", "-i", file}
	args = append(args, outputArgs...)
	return append(args, output)
}

func (c Config) binary() string {
	if c.Binary == "" {
		return defaultBinary
	}
	return c.Binary
}

package decode

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/viddec/viddec/pkg/viddec"
)

type Config struct {
	Profile string `yaml:"profile"` // mpeg2, h264 or auto
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`

	// input chunk sizes, cycled; chunk_size alone is a list of one
	ChunkSize  int   `yaml:"chunk_size"`
	ChunkSizes []int `yaml:"chunk_sizes"`

	InputBuffers  int  `yaml:"input_buffers"`
	OutputBuffers int  `yaml:"output_buffers"`
	Handles       bool `yaml:"handles"` // output slots take decode targets

	Output        string `yaml:"output"`   // Y4M path, {name} is the input name, - is stdout
	Snapshot      string `yaml:"snapshot"` // BMP of the last frame, {name} as above
	SnapshotWidth int    `yaml:"snapshot_width"`
	Rate          string `yaml:"rate"` // Y4M frame rate

	Parallel int `yaml:"parallel"`
}

func DefaultConfig() Config {
	ports := viddec.NewGeometry(0, 0).PortDefaults()
	return Config{
		Profile:       "auto",
		Width:         viddec.DefaultWidth,
		Height:        viddec.DefaultHeight,
		ChunkSize:     4096,
		InputBuffers:  ports.InputActual,
		OutputBuffers: ports.OutputActual,
		Rate:          "25:1",
		Parallel:      2,
	}
}

var (
	ErrChunkSize = errors.New("decode: chunk size must be positive")
	ErrBuffers   = errors.New("decode: need at least 2 input and 1 output buffer")
)

func (c *Config) Validate() error {
	for _, size := range c.chunkSizes() {
		if size <= 0 {
			return ErrChunkSize
		}
	}
	if c.InputBuffers < 2 || c.OutputBuffers < 1 {
		return ErrBuffers
	}
	if c.Profile != "auto" && viddec.ParseProfile(c.Profile) == viddec.ProfileUnknown {
		return errors.New("decode: unknown profile: " + c.Profile)
	}
	return nil
}

func (c *Config) chunkSizes() []int {
	if len(c.ChunkSizes) > 0 {
		return c.ChunkSizes
	}
	return []int{c.ChunkSize}
}

func (c *Config) Geometry() viddec.Geometry {
	return viddec.NewGeometry(c.Width, c.Height)
}

// profileFor picks the profile of an input: config, file extension, then
// the first bytes of the stream
func (c *Config) profileFor(name string, head []byte) viddec.Profile {
	if c.Profile != "auto" {
		return viddec.ParseProfile(c.Profile)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".m1v", ".m2v", ".mpv", ".mpg", ".mpeg":
		return viddec.ProfileMPEG2Main
	case ".h264", ".264", ".avc", ".mp4", ".m4v", ".mov":
		return viddec.ProfileH264High
	}

	return viddec.DetectProfile(head)
}

// outputPath fills a path template for an input
func outputPath(template, input string) string {
	if template == "" || template == "-" {
		return template
	}
	name := filepath.Base(input)
	if strings.HasPrefix(input, "exec:") {
		name = "exec"
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(template, "{name}", name)
}

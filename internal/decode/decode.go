package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/viddec/viddec/internal/app"
	"github.com/viddec/viddec/pkg/viddec"
	"github.com/viddec/viddec/pkg/viddec/soft"
	"github.com/viddec/viddec/pkg/y4m"
	"golang.org/x/sync/errgroup"
)

var ErrStdout = errors.New("decode: only one input can write to stdout")

func Init() {
	var cfg struct {
		Mod Config `yaml:"decode"`
	}

	cfg.Mod = DefaultConfig()

	app.LoadConfig(&cfg)

	conf = cfg.Mod

	log = app.GetLogger("decode")
	decLog = app.GetLogger("viddec")
}

var conf = DefaultConfig()

var log, decLog = zerolog.Nop(), zerolog.Nop()

// Result of one input
type Result struct {
	Input    string
	Profile  viddec.Profile
	Frames   int
	Stats    viddec.Stats
	Submits  int
	Duration time.Duration
}

// Run decodes inputs, up to Parallel at once. The first failure cancels
// the rest.
func Run(ctx context.Context, inputs []string) ([]Result, error) {
	return RunConfig(ctx, conf, inputs)
}

func RunConfig(ctx context.Context, cfg Config, inputs []string) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Output == "-" && len(inputs) > 1 {
		return nil, ErrStdout
	}

	results := make([]Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Parallel, 1))

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			res, err := decodeInput(ctx, cfg, input)
			results[i] = res
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func decodeInput(ctx context.Context, cfg Config, input string) (res Result, err error) {
	res.Input = input
	start := time.Now()

	src, err := openSource(ctx, input)
	if err != nil {
		return
	}
	defer src.Close()

	// the profile comes from the name or the first bytes of the stream
	head := make([]byte, 64*1024)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return
	}
	head = head[:n]

	if res.Profile = cfg.profileFor(input, head); res.Profile == viddec.ProfileUnknown {
		return res, viddec.ErrNoProfile
	}

	out, err := openOutput(cfg.Output, input)
	if err != nil {
		return
	}

	var wr *y4m.Writer
	var snap snapshot

	sink := func(frame []byte, geo viddec.Geometry) error {
		if cfg.Snapshot != "" {
			snap.keep(frame, geo)
		}
		if out == nil {
			return nil
		}
		if wr == nil {
			wr = y4m.NewWriter(out, geo.Width, geo.Height, cfg.Rate)
		}
		return wr.WriteNV12(frame, geo.Stride, geo.SliceHeight)
	}

	backend := soft.New()
	s := newSession(cfg, backend, res.Profile, sink, decLog.With().Str("input", input).Logger())

	log.Debug().Msgf("[decode] start input=%s profile=%s role=%s", input, res.Profile, res.Profile.Role())

	err = s.run(ctx, io.MultiReader(bytes.NewReader(head), src))

	if wr != nil {
		if err2 := wr.Flush(); err == nil {
			err = err2
		}
	}
	if out != nil && out != os.Stdout {
		if err2 := out.Close(); err == nil {
			err = err2
		}
	}

	if err == nil && cfg.Snapshot != "" && !snap.empty() {
		err = writeSnapshot(&snap, outputPath(cfg.Snapshot, input), cfg.SnapshotWidth)
	}

	res.Frames = s.frames
	res.Stats = s.dec.Stats()
	res.Submits = backend.Submits
	res.Duration = time.Since(start)

	if err != nil {
		log.Error().Err(err).Msgf("[decode] input=%s", input)
		return
	}

	stats := res.Stats
	log.Info().
		Str("input", input).
		Int("frames", res.Frames).
		Int("dropped", stats.Dropped).
		Int("resyncs", stats.Resyncs).
		Str("read", humanize.Bytes(uint64(stats.Bytes))).
		Str("rate", humanize.SI(float64(stats.Bytes)*8/res.Duration.Seconds(), "bps")).
		Msg("[decode] done")

	if wr != nil {
		log.Debug().Msgf("[decode] wrote %d frames, %s", wr.Frames, humanize.Bytes(uint64(wr.Bytes)))
	}

	return
}

func openOutput(template, input string) (*os.File, error) {
	switch path := outputPath(template, input); path {
	case "":
		return nil, nil
	case "-":
		return os.Stdout, nil
	default:
		return os.Create(path)
	}
}

func writeSnapshot(snap *snapshot, path string, width int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = snap.WriteBMP(f, width); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

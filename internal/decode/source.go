package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/viddec/viddec/pkg/h264/annexb"
	"github.com/viddec/viddec/pkg/shell"
)

var ErrNoVideo = errors.New("decode: no H264 video track")

// openSource opens an input: - is stdin, exec:cmd is the stdout of a
// command, MP4 files are demuxed to an Annex B stream, anything else is
// read as an elementary stream
func openSource(ctx context.Context, input string) (io.ReadCloser, error) {
	if input == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	if cmdline, ok := strings.CutPrefix(input, "exec:"); ok {
		cmd, err := shell.NewCommand(ctx, shell.ReplaceEnvVars(cmdline))
		if err != nil {
			return nil, err
		}
		if err = cmd.Start(); err != nil {
			return nil, err
		}
		log.Debug().Msgf("[decode] run %s", cmd.String())
		return &command{Command: cmd}, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(input)) {
	case ".mp4", ".m4v", ".mov":
		rd, err := newMP4Reader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("decode: %s: %w", input, err)
		}
		return struct {
			io.Reader
			io.Closer
		}{rd, f}, nil
	}

	return f, nil
}

// command reports a failed exit at the end of its output
type command struct {
	*shell.Command
	err error // sticky end of output
}

func (c *command) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.Command.Read(p)
	if err == io.EOF {
		if err = c.Command.Wait(); err == nil {
			err = io.EOF
		}
		c.err = err
	}
	return n, err
}

func (c *command) Close() error {
	if c.err != nil {
		return nil
	}
	return c.Command.Close()
}

// sampleReader joins samples into one stream
type sampleReader struct {
	next func() ([]byte, error)
	buf  []byte
}

func (r *sampleReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		b, err := r.next()
		if err != nil {
			return 0, err
		}
		r.buf = b
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// newMP4Reader returns the first video track of a progressive or fragmented
// MP4 as Annex B with parameter sets before every sync sample
func newMP4Reader(rs io.ReadSeeker) (io.Reader, error) {
	file, err := mp4.DecodeFile(rs)
	if err != nil {
		return nil, err
	}

	moov := file.Moov
	if file.IsFragmented() && file.Init != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		return nil, ErrNoVideo
	}

	trak, params := videoTrack(moov)
	if trak == nil {
		return nil, ErrNoVideo
	}

	if file.IsFragmented() {
		return fragmentedSamples(file, moov, trak, params)
	}
	return progressiveSamples(rs, trak, params)
}

func videoTrack(moov *mp4.MoovBox) (*mp4.TrakBox, []byte) {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
			if entry, ok := child.(*mp4.VisualSampleEntryBox); ok && entry.AvcC != nil {
				params := annexb.AppendNALUs(nil, entry.AvcC.SPSnalus...)
				params = annexb.AppendNALUs(params, entry.AvcC.PPSnalus...)
				return trak, params
			}
		}
	}
	return nil, nil
}

func annexB(sample, params []byte, sync bool) ([]byte, error) {
	b, err := annexb.DecodeAVCC(sample, false)
	if err != nil {
		return nil, err
	}
	if sync {
		b = append(params[:len(params):len(params)], b...)
	}
	return b, nil
}

func progressiveSamples(rs io.ReadSeeker, trak *mp4.TrakBox, params []byte) (io.Reader, error) {
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil || stbl.Stsc == nil || (stbl.Stco == nil && stbl.Co64 == nil) {
		return nil, errors.New("no sample table")
	}

	sync := map[uint32]bool{}
	if stbl.Stss != nil {
		for _, nr := range stbl.Stss.SampleNumber {
			sync[nr] = true
		}
	}

	var nr uint32
	next := func() ([]byte, error) {
		if nr++; nr > stbl.Stsz.SampleNumber {
			return nil, io.EOF
		}

		offset, err := sampleOffset(stbl, nr)
		if err != nil {
			return nil, err
		}

		b := make([]byte, stbl.Stsz.GetSampleSize(int(nr)))
		if _, err = rs.Seek(int64(offset), io.SeekStart); err != nil {
			return nil, err
		}
		if _, err = io.ReadFull(rs, b); err != nil {
			return nil, err
		}

		return annexB(b, params, stbl.Stss == nil || sync[nr] || nr == 1)
	}

	return &sampleReader{next: next}, nil
}

func sampleOffset(stbl *mp4.StblBox, nr uint32) (uint64, error) {
	chunkNr, first, err := stbl.Stsc.ChunkNrFromSampleNr(int(nr))
	if err != nil {
		return 0, err
	}

	var offset uint64
	if stbl.Stco != nil {
		if offset, err = stbl.Stco.GetOffset(chunkNr); err != nil {
			return 0, err
		}
	} else {
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return 0, errors.New("chunk out of range")
		}
		offset = stbl.Co64.ChunkOffset[chunkNr-1]
	}

	for i := uint32(first); i < nr; i++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(i)))
	}
	return offset, nil
}

func fragmentedSamples(file *mp4.File, moov *mp4.MoovBox, trak *mp4.TrakBox, params []byte) (io.Reader, error) {
	id := trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == id {
				trex = t
			}
		}
	}

	var samples []mp4.FullSample
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			// with a trex only the samples of its track are returned
			full, err := frag.GetFullSamples(trex)
			if err != nil {
				return nil, err
			}
			samples = append(samples, full...)
		}
	}

	var i int
	next := func() ([]byte, error) {
		if i >= len(samples) {
			return nil, io.EOF
		}
		s := samples[i]
		i++
		return annexB(s.Data, params, s.IsSync() || i == 1)
	}

	return &sampleReader{next: next}, nil
}

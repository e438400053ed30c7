package viddec_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viddec/viddec/pkg/viddec"
)

func TestProfileRoles(t *testing.T) {
	for _, profile := range []viddec.Profile{viddec.ProfileMPEG2Main, viddec.ProfileH264High} {
		require.Equal(t, profile, viddec.ProfileForRole(profile.Role()))
		require.Equal(t, profile, viddec.ParseProfile(profile.Role()))
		require.NotZero(t, profile.Codec())
	}

	require.Equal(t, viddec.ProfileUnknown, viddec.ProfileForRole("video_decoder.vp8"))
	require.Equal(t, "", viddec.ProfileUnknown.Role())

	require.Equal(t, viddec.ProfileMPEG2Main, viddec.ParseProfile("mpeg2"))
	require.Equal(t, viddec.ProfileH264High, viddec.ParseProfile("avc"))
	require.Equal(t, viddec.ProfileUnknown, viddec.ParseProfile("hevc"))
}

func TestDetectProfile(t *testing.T) {
	require.Equal(t, viddec.ProfileMPEG2Main, viddec.DetectProfile([]byte{0, 0, 1, 0xB2, 0, 0, 1, 0xB3}))
	require.Equal(t, viddec.ProfileH264High, viddec.DetectProfile([]byte{0, 0, 0, 1, 0x67, 100}))
	require.Equal(t, viddec.ProfileUnknown, viddec.DetectProfile([]byte{0, 0, 1}))
	require.Equal(t, viddec.ProfileUnknown, viddec.DetectProfile(nil))
}

func TestGeometryDefaults(t *testing.T) {
	geo := viddec.NewGeometry(0, 0)
	require.Equal(t, viddec.Geometry{Width: 176, Height: 144, Stride: 176, SliceHeight: 144}, geo)
	require.Equal(t, 176*144*3/2, geo.FrameSize())

	ports := geo.PortDefaults()
	require.Equal(t, 8, ports.InputActual)
	require.Equal(t, 4, ports.OutputMin)
	require.Equal(t, 176*144*2, ports.InputSize)
	require.Equal(t, geo.FrameSize(), ports.OutputSize)

	tmpl := viddec.ProfileH264High.Template()
	require.Equal(t, 2, tmpl.MaxReferences)
	require.Equal(t, "420", tmpl.ChromaFormat)
	require.True(t, tmpl.Chunked)
}

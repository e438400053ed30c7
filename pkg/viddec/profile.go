package viddec

import (
	"bytes"
)

type Profile byte

const (
	ProfileUnknown Profile = iota
	ProfileMPEG2Main
	ProfileH264High
)

const (
	RoleMPEG2 = "video_decoder.mpeg2"
	RoleAVC   = "video_decoder.avc"
)

func (p Profile) String() string {
	switch p {
	case ProfileMPEG2Main:
		return "MPEG2 Main"
	case ProfileH264High:
		return "H264 High"
	}
	return "unknown"
}

func (p Profile) Role() string {
	switch p {
	case ProfileMPEG2Main:
		return RoleMPEG2
	case ProfileH264High:
		return RoleAVC
	}
	return ""
}

func (p Profile) Codec() Codec {
	switch p {
	case ProfileMPEG2Main:
		return CodecMPEG12
	case ProfileH264High:
		return CodecH264
	}
	return 0
}

func ProfileForRole(role string) Profile {
	switch role {
	case RoleMPEG2:
		return ProfileMPEG2Main
	case RoleAVC:
		return ProfileH264High
	}
	return ProfileUnknown
}

// ParseProfile accepts config names like "mpeg2" and "h264"
func ParseProfile(s string) Profile {
	switch s {
	case "mpeg2", "mpeg12", "m2v", RoleMPEG2:
		return ProfileMPEG2Main
	case "h264", "avc", RoleAVC:
		return ProfileH264High
	}
	return ProfileUnknown
}

// DetectProfile looks at the first start code with a known meaning in an
// elementary stream
func DetectProfile(b []byte) Profile {
	for {
		i := bytes.Index(b, []byte{0, 0, 1})
		if i < 0 || i+3 >= len(b) {
			return ProfileUnknown
		}
		b = b[i+3:]

		switch code := b[0]; {
		case code == 0xB3: // MPEG sequence header
			return ProfileMPEG2Main
		case code&0x9F == 0x07: // H264 SPS with forbidden bit clear
			return ProfileH264High
		}
	}
}

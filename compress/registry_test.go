package compress

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/internal/memfile"
)

// fakeBackend is a minimal, test-only Backend used to exercise
// SelectEncoder/SelectDecoder's iterate-and-fallthrough behavior without
// depending on real codecs or external processes.
type fakeBackend struct {
	name       string
	available  bool
	supports   bool
	encoderErr error
	decoderErr error
}

func (b fakeBackend) Name() string           { return b.name }
func (b fakeBackend) IsAvailable() bool      { return b.available }
func (b fakeBackend) Supports(_ []byte) bool { return b.supports }

func (b fakeBackend) NewEncoder(_ io.WriteSeeker, _ EncodeInfo) (Encoder, error) {
	if b.encoderErr != nil {
		return nil, b.encoderErr
	}

	return &streamEncoder{state: EncoderCreated}, nil
}

func (b fakeBackend) NewDecoder(_ io.Reader, _ DecodeInfo) (Decoder, error) {
	if b.decoderErr != nil {
		return nil, b.decoderErr
	}

	return &streamDecoder{}, nil
}

func TestSelectEncoderSkipsUnavailableAndFailingBackends(t *testing.T) {
	backends := []Backend{
		fakeBackend{name: "unavailable", available: false},
		fakeBackend{name: "broken", available: true, encoderErr: errors.New("boom")},
		fakeBackend{name: "good", available: true},
	}

	enc, err := SelectEncoder(backends, memfile.New(), EncodeInfo{})
	require.NoError(t, err)
	require.NotNil(t, enc)
}

func TestSelectEncoderReturnsJoinedErrorWhenAllFail(t *testing.T) {
	backends := []Backend{
		fakeBackend{name: "unavailable", available: false},
		fakeBackend{name: "broken", available: true, encoderErr: errors.New("boom")},
	}

	_, err := SelectEncoder(backends, memfile.New(), EncodeInfo{})
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrNoLazBackend)
}

func TestSelectEncoderEmptyBackendListReturnsBareSentinel(t *testing.T) {
	_, err := SelectEncoder(nil, memfile.New(), EncodeInfo{})
	require.ErrorIs(t, err, errs.ErrNoLazBackend)
	require.Equal(t, errs.ErrNoLazBackend, err)
}

func TestSelectDecoderOnlyConsidersSupportingBackends(t *testing.T) {
	backends := []Backend{
		fakeBackend{name: "no-match", available: true, supports: false},
		fakeBackend{name: "match", available: true, supports: true},
	}

	dec, err := SelectDecoder(backends, nil, DecodeInfo{})
	require.NoError(t, err)
	require.NotNil(t, dec)
}

func TestSelectDecoderNoSupportingBackendReturnsSentinel(t *testing.T) {
	backends := []Backend{
		fakeBackend{name: "no-match", available: true, supports: false},
	}

	_, err := SelectDecoder(backends, nil, DecodeInfo{})
	require.ErrorIs(t, err, errs.ErrNoLazBackend)
}

func TestDefaultBackendsOrderAndAvailability(t *testing.T) {
	backends := DefaultBackends()
	require.Len(t, backends, 3)
	require.Equal(t, "zstd-inprocess", backends[0].Name())
	require.Equal(t, "lz4-inprocess", backends[1].Name())
	require.True(t, backends[0].IsAvailable())
	require.True(t, backends[1].IsAvailable())
}

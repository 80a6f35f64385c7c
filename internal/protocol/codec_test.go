package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLineIsOneLine(t *testing.T) {
	msg, err := NewMessage(TypeHandResult, HandResultData{
		Winner:  WinnerPlayer,
		Payout:  250,
		Message: "blackjack 3:2",
	})
	require.NoError(t, err)

	line, err := EncodeLine(msg)
	require.NoError(t, err)

	assert.True(t, bytes.HasSuffix(line, []byte("\n")), "line must end in LF")
	assert.Equal(t, 1, bytes.Count(line, []byte("\n")), "payload must not embed newlines")
}

func TestRoundTrip(t *testing.T) {
	msg, err := NewMessage(TypeJoinTable, JoinTableData{
		PlayerName: "ana",
		BuyIn:      1000,
		NumDecks:   4,
	})
	require.NoError(t, err)

	line, err := EncodeLine(msg)
	require.NoError(t, err)

	decoded, err := DecodeLine(line)
	require.NoError(t, err)
	assert.Equal(t, TypeJoinTable, decoded.Type)

	var data JoinTableData
	require.NoError(t, DecodeData(decoded, &data))
	assert.Equal(t, "ana", data.PlayerName)
	assert.Equal(t, 1000, data.BuyIn)
	assert.Equal(t, 4, data.NumDecks)
}

func TestDecodeLineRejectsUnknownTag(t *testing.T) {
	_, err := DecodeLine([]byte(`{"type":"launch_missiles","data":{}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMessageType))
}

func TestDecodeLineRejectsGarbage(t *testing.T) {
	_, err := DecodeLine([]byte(`this is not json`))
	assert.Error(t, err)
}

func TestDecodeLineEmpty(t *testing.T) {
	_, err := DecodeLine([]byte("  \n"))
	assert.True(t, errors.Is(err, ErrEmptyLine))
}

func TestNewMessageWithoutPayload(t *testing.T) {
	msg, err := NewMessage(TypeHit, nil)
	require.NoError(t, err)

	line, err := EncodeLine(msg)
	require.NoError(t, err)

	decoded, err := DecodeLine(line)
	require.NoError(t, err)
	assert.Equal(t, TypeHit, decoded.Type)

	// Decoding an absent payload into a struct is a no-op
	var data PlaceBetData
	assert.NoError(t, DecodeData(decoded, &data))
	assert.Zero(t, data.Amount)
}

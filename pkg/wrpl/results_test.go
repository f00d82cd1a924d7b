package wrpl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type stubDecompressor struct {
	json string
	err  error
}

func (s *stubDecompressor) Decompress(ctx context.Context, block []byte) (string, error) {
	return s.json, s.err
}

func TestLocateResults_NoResultsWhenOffsetIsZero(t *testing.T) {
	results, err := LocateResults(context.Background(), []byte{1, 2, 3}, 0, &stubDecompressor{})
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestLocateResults_NoResultsWhenOffsetBeyondData(t *testing.T) {
	results, err := LocateResults(context.Background(), []byte{1, 2, 3}, 10, &stubDecompressor{})
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestLocateResults_DecodesAndMapsPlayers(t *testing.T) {
	blkJSON := `{
		"status": "fail",
		"timePlayed": 321.5,
		"author": "PilotOne",
		"authorUserId": "555",
		"player": [
			{"userId": "0111", "squadId": 2, "autoSquad": true, "team": 1, "kills": 4, "deaths": 1}
		],
		"uiScriptsData": {
			"playersInfo": {
				"a": {"id": 111, "name": "PilotOne", "clanId": "TAG", "squadronTag": "TAG", "platform": "win", "crafts": {"1": "p-51", "0": "fw-190"}}
			}
		}
	}`
	dec := &stubDecompressor{json: blkJSON}

	data := make([]byte, 10)
	results, err := LocateResults(context.Background(), data, 5, dec)
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Equal(t, "fail", results.Status)
	require.Equal(t, 321.5, results.TimePlayed)
	require.Equal(t, "PilotOne", results.Author)
	require.Equal(t, "555", results.AuthorUserID)
	require.Len(t, results.Players, 1)

	p := results.Players[0]
	// UserID comes from the matched playersInfo entry's canonical id, not
	// the player array's (possibly differently formatted) userId.
	require.Equal(t, "111", p.PlayerInfo.UserID)
	require.Equal(t, "PilotOne", p.PlayerInfo.Username)
	require.Equal(t, int32(4), p.PlayerReplayData.Kills)
	require.Equal(t, int32(1), p.PlayerReplayData.Deaths)
	require.Equal(t, []string{"p-51", "fw-190"}, p.PlayerReplayData.Lineup)
}

func TestLocateResults_AppliesDocumentedDefaults(t *testing.T) {
	dec := &stubDecompressor{json: `{}`}
	data := make([]byte, 10)
	results, err := LocateResults(context.Background(), data, 5, dec)
	require.NoError(t, err)
	require.Equal(t, "unknown", results.Status)
	require.Equal(t, "server", results.Author)
	require.Equal(t, "-1", results.AuthorUserID)
	require.Empty(t, results.Players)
}

func TestLocateResults_DecompressorErrorWrapped(t *testing.T) {
	dec := &stubDecompressor{err: errBoom}
	data := make([]byte, 10)
	_, err := LocateResults(context.Background(), data, 5, dec)
	require.Error(t, err)
	var decodeFailed *ResultsDecodeFailedError
	require.ErrorAs(t, err, &decodeFailed)
}

func TestFlexID_UnmarshalsNumberAndString(t *testing.T) {
	var fromNumber flexID
	require.NoError(t, fromNumber.UnmarshalJSON([]byte(`42`)))
	require.Equal(t, "42", fromNumber.String())

	var fromString flexID
	require.NoError(t, fromString.UnmarshalJSON([]byte(`"42"`)))
	require.Equal(t, "42", fromString.String())

	n, err := fromNumber.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
}

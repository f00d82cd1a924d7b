package wrpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"unicode/utf8"
)

// BlkDecompressor transforms a compressed "blk" block into its decoded
// JSON text. Production code satisfies this with ExternalBlkDecompressor;
// tests supply a stub implementation.
type BlkDecompressor interface {
	Decompress(ctx context.Context, block []byte) (string, error)
}

// ExternalBlkDecompressor shells out to an external blk-decompression tool
// as a child process with piped stdin/stdout/stderr, per §5's
// external-process boundary. The entire compressed block is fed to stdin
// while stdout and stderr are collected in memory; buffering the whole
// output is acceptable because results blocks are bounded in size.
type ExternalBlkDecompressor struct {
	// Command is the executable to invoke (defaults to "blk_decompress" on
	// PATH when empty).
	Command string
}

// Decompress runs the external tool and returns its stdout as UTF-8 text.
// Spawn failure, non-zero exit, or non-UTF-8 stdout are all reported as
// errors here; callers (LocateResults) downgrade them to "no results".
func (e *ExternalBlkDecompressor) Decompress(ctx context.Context, block []byte) (string, error) {
	cmdName := e.Command
	if cmdName == "" {
		cmdName = "blk_decompress"
	}

	cmd := exec.CommandContext(ctx, cmdName)
	cmd.Stdin = bytes.NewReader(block)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("blk decompress tool failed: %w (stderr: %s)", err, stderr.String())
	}

	out := stdout.Bytes()
	if !utf8.Valid(out) {
		return "", fmt.Errorf("blk decompress tool produced non-UTF-8 output")
	}

	return string(out), nil
}

// LocateResults implements the ResultsLocator (§4.7). If rezOffset is zero
// or points at or beyond the end of data, it returns (nil, nil) — "no
// results", not an error. Otherwise it slices the tail of data, invokes
// dec, and maps the resulting JSON into a ReplayResults.
func LocateResults(ctx context.Context, data []byte, rezOffset uint32, dec BlkDecompressor) (*ReplayResults, error) {
	if rezOffset == 0 || int(rezOffset) >= len(data) {
		return nil, nil
	}

	block := data[rezOffset:]
	jsonText, err := dec.Decompress(ctx, block)
	if err != nil {
		return nil, newResultsDecodeFailedError(err.Error())
	}

	var doc rawResultsDoc
	if err := json.Unmarshal([]byte(jsonText), &doc); err != nil {
		return nil, newResultsDecodeFailedError("failed to decode blk JSON: " + err.Error())
	}

	return mapResults(&doc), nil
}

// flexID holds a player/user identifier that the source JSON may encode as
// either a number or a string, comparable (§4.7) as its string form.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }

func (f flexID) Int64() (int64, error) {
	return strconv.ParseInt(string(f), 10, 64)
}

// rawResultsDoc mirrors the top-level shape of the blk_decompress JSON
// output (§4.7). Fields use json tags matching the source's camelCase
// naming; defaulting happens in mapResults since encoding/json's zero
// values don't always match the spec's documented defaults.
type rawResultsDoc struct {
	Status         *string               `json:"status"`
	TimePlayed     *float64              `json:"timePlayed"`
	AuthorUserID   *string               `json:"authorUserId"`
	Author         *string               `json:"author"`
	Player         []rawPlayerEntry      `json:"player"`
	UIScriptsData  rawUIScriptsData      `json:"uiScriptsData"`
}

type rawUIScriptsData struct {
	PlayersInfo map[string]rawPlayerInfo `json:"playersInfo"`
}

type rawPlayerInfo struct {
	ID          flexID            `json:"id"`
	Name        string            `json:"name"`
	ClanID      string            `json:"clanId"`
	SquadronTag string            `json:"squadronTag"`
	Platform    string            `json:"platform"`
	WaitTime    *float32          `json:"wait_time"`
	Crafts      map[string]string `json:"crafts"`
	craftOrder  []string          // populated by UnmarshalJSON to preserve insertion order
}

// UnmarshalJSON records Crafts' insertion order alongside the map, since
// Go's encoding/json doesn't expose object key order on a plain map.
func (p *rawPlayerInfo) UnmarshalJSON(data []byte) error {
	type alias rawPlayerInfo
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = rawPlayerInfo(a)

	var withRawCrafts struct {
		Crafts json.RawMessage `json:"crafts"`
	}
	if err := json.Unmarshal(data, &withRawCrafts); err == nil && len(withRawCrafts.Crafts) > 0 {
		p.craftOrder = orderedObjectKeys(withRawCrafts.Crafts)
	}
	return nil
}

type rawPlayerEntry struct {
	UserID        flexID `json:"userId"`
	SquadID       int32       `json:"squadId"`
	AutoSquad     bool        `json:"autoSquad"`
	Team          int32       `json:"team"`
	Kills         int32       `json:"kills"`
	GroundKills   int32       `json:"groundKills"`
	NavalKills    int32       `json:"navalKills"`
	TeamKills     int32       `json:"teamKills"`
	AIKills       int32       `json:"aiKills"`
	AIGroundKills int32       `json:"aiGroundKills"`
	AINavalKills  int32       `json:"aiNavalKills"`
	Assists       int32       `json:"assists"`
	Deaths        int32       `json:"deaths"`
	CaptureZone   int32       `json:"captureZone"`
	DamageZone    int32       `json:"damageZone"`
	Score         int32       `json:"score"`
	AwardDamage   int32       `json:"awardDamage"`
	MissileEvades int32       `json:"missileEvades"`
}

func mapResults(doc *rawResultsDoc) *ReplayResults {
	results := &ReplayResults{
		Status:       stringOrDefault(doc.Status, "unknown"),
		TimePlayed:   0,
		Author:       stringOrDefault(doc.Author, "server"),
		AuthorUserID: stringOrDefault(doc.AuthorUserID, "-1"),
	}
	if doc.TimePlayed != nil {
		results.TimePlayed = *doc.TimePlayed
	}

	for _, entry := range doc.Player {
		info, ok := findPlayerInfo(doc.UIScriptsData.PlayersInfo, entry.UserID.String())
		if !ok {
			continue
		}

		pd := PlayerData{
			PlayerInfo: PlayerInfo{
				UserID:      info.ID.String(),
				Username:    info.Name,
				SquadronID:  info.ClanID,
				SquadronTag: info.SquadronTag,
				Platform:    info.Platform,
			},
			PlayerReplayData: PlayerReplayData{
				SquadID:       entry.SquadID,
				AutoSquad:     entry.AutoSquad,
				Team:          entry.Team,
				Kills:         entry.Kills,
				GroundKills:   entry.GroundKills,
				NavalKills:    entry.NavalKills,
				TeamKills:     entry.TeamKills,
				AIKills:       entry.AIKills,
				AIGroundKills: entry.AIGroundKills,
				AINavalKills:  entry.AINavalKills,
				Assists:       entry.Assists,
				Deaths:        entry.Deaths,
				CaptureZone:   entry.CaptureZone,
				DamageZone:    entry.DamageZone,
				Score:         entry.Score,
				AwardDamage:   entry.AwardDamage,
				MissileEvades: entry.MissileEvades,
				Lineup:        lineupFor(info),
			},
		}
		if info.WaitTime != nil {
			pd.PlayerInfo.WaitTime = *info.WaitTime
		}

		results.Players = append(results.Players, pd)
	}

	return results
}

// findPlayerInfo matches a `player` entry's userId against playersInfo by
// comparing it (as a string) to either the stringification of the info
// entry's numeric id or its numeric form (§4.7).
func findPlayerInfo(playersInfo map[string]rawPlayerInfo, userID string) (rawPlayerInfo, bool) {
	for _, info := range playersInfo {
		if info.ID.String() == userID {
			return info, true
		}
		if n, err := info.ID.Int64(); err == nil {
			if m, err := strconv.ParseInt(userID, 10, 64); err == nil && n == m {
				return info, true
			}
		}
	}
	return rawPlayerInfo{}, false
}

func lineupFor(info rawPlayerInfo) []string {
	if len(info.craftOrder) > 0 {
		lineup := make([]string, 0, len(info.craftOrder))
		for _, k := range info.craftOrder {
			lineup = append(lineup, info.Crafts[k])
		}
		return lineup
	}
	lineup := make([]string, 0, len(info.Crafts))
	for _, v := range info.Crafts {
		lineup = append(lineup, v)
	}
	return lineup
}

func stringOrDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// orderedObjectKeys returns a JSON object's top-level keys in source order,
// since encoding/json's map decoding discards it.
func orderedObjectKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var keys []string

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			break
		}
		key, ok := keyTok.(string)
		if !ok {
			break
		}
		keys = append(keys, key)

		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			break
		}
	}

	return keys
}

package wrpl

import "fmt"

// Difficulty is the decoded difficulty byte: a low nibble holding the actual
// difficulty value and a high nibble of unknown/reserved bits.
type Difficulty struct {
	UnknownNibble uint8
	Value         uint8
}

func difficultyFromByte(b byte) Difficulty {
	return Difficulty{
		UnknownNibble: (b >> 4) & 0x0F,
		Value:         b & 0x0F,
	}
}

func (d Difficulty) String() string {
	return fmt.Sprintf("%d (unknown: %d)", d.Value, d.UnknownNibble)
}

// ReplayHeader is the fixed-layout metadata header at the start of every
// .wrpl file (§3).
type ReplayHeader struct {
	Magic             [4]byte
	Version           uint32
	Level             string
	LevelSettings     string
	BattleType        string
	Environment       string
	Visibility        string
	RezOffset         uint32
	Difficulty        Difficulty
	SessionType       uint32
	SessionID         uint64
	MSetSize          uint32
	LocName           string
	StartTime         uint32
	TimeLimit         uint32
	ScoreLimit        uint32
	BattleClass       string
	BattleKillStreak  string
}

// String renders every header field, mirroring the CLI's informative dump.
func (h *ReplayHeader) String() string {
	return fmt.Sprintf(
		"Magic bytes: % x\n"+
			"Version: %d\n"+
			"Level: %s\n"+
			"Level Settings: %s\n"+
			"Battle Type: %s\n"+
			"Environment: %s\n"+
			"Visibility: %s\n"+
			"Rez Offset: %d\n"+
			"Difficulty: %s\n"+
			"Session Type: %d\n"+
			"Session ID: %#x (%d)\n"+
			"MSet Size: %d\n"+
			"Location Name: %s\n"+
			"Start Time: %d\n"+
			"Time Limit: %d\n"+
			"Score Limit: %d\n"+
			"Battle Class: %s\n"+
			"Battle Kill Streak: %s\n",
		h.Magic[:], h.Version, h.Level, h.LevelSettings, h.BattleType,
		h.Environment, h.Visibility, h.RezOffset, h.Difficulty, h.SessionType,
		h.SessionID, h.SessionID, h.MSetSize, h.LocName, h.StartTime,
		h.TimeLimit, h.ScoreLimit, h.BattleClass, h.BattleKillStreak,
	)
}

// HasResults reports whether rez_offset points at a results block that's
// actually within the file.
func (h *ReplayHeader) HasResults(fileLen int) bool {
	return h.RezOffset != 0 && int(h.RezOffset) < fileLen
}

// Packet is one event-stream record emitted by the packet loop (§3).
type Packet struct {
	Type        PacketType
	RawType     uint8
	TimestampMs uint32
	Payload     []byte
}

// ChatInfo is a decoded chat message (§3/§4.4).
type ChatInfo struct {
	TimestampMs uint32
	Sender      string
	Message     string
	ChannelType *uint8
	IsEnemy     *uint8
}

// PlayerInfo is per-player identity/roster data sourced from
// uiScriptsData.playersInfo (§4.7).
type PlayerInfo struct {
	UserID      string
	Username    string
	SquadronID  string
	SquadronTag string
	Platform    string
	WaitTime    float32
}

// PlayerReplayData is per-player battle statistics sourced from the `player`
// array (§4.7).
type PlayerReplayData struct {
	SquadID        int32
	AutoSquad      bool
	Team           int32
	Kills          int32
	GroundKills    int32
	NavalKills     int32
	TeamKills      int32
	AIKills        int32
	AIGroundKills  int32
	AINavalKills   int32
	Assists        int32
	Deaths         int32
	CaptureZone    int32
	DamageZone     int32
	Score          int32
	AwardDamage    int32
	MissileEvades  int32
	Lineup         []string
}

// PlayerData pairs a player's roster identity with their battle statistics,
// in the order the source `player` array listed them.
type PlayerData struct {
	PlayerInfo       PlayerInfo
	PlayerReplayData PlayerReplayData
}

// ReplayResults is the decoded post-battle results block (§3/§4.7).
type ReplayResults struct {
	Status        string
	TimePlayed    float64
	Author        string
	AuthorUserID  string
	Players       []PlayerData
}

// Replay is the single aggregated record the Orchestrator returns.
type Replay struct {
	Header        *ReplayHeader
	Packets       []Packet
	ChatMessages  []ChatInfo
	PacketCount   uint64
	DecodedBytes  uint64
	Results       *ReplayResults
}

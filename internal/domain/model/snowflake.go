package model

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DiscordEpoch is the first millisecond of 2015, the platform's id epoch.
const DiscordEpoch int64 = 1420070400000

// SnowflakeTime extracts the creation time embedded in a platform id.
func SnowflakeTime(id string) (time.Time, error) {
	sf, err := snowflake.ParseString(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing snowflake %q: %w", id, err)
	}
	// Layout matches snowflake's default: 22 low bits of worker/sequence.
	ms := (sf.Int64() >> 22) + DiscordEpoch
	return time.UnixMilli(ms).UTC(), nil
}

// SnowflakeAt returns an id whose embedded timestamp is t.
func SnowflakeAt(t time.Time) string {
	return snowflake.ID((t.UnixMilli() - DiscordEpoch) << 22).String()
}

package config

import (
	"flag"
	"io"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/errors"
	"github.com/hailam/chesscore/internal/testutil"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	testutil.AssertNoError(t, c.Validate())
	if c.CastlingPolicy != board.CastleOnly {
		t.Errorf("default policy = %v, want castle-only", c.CastlingPolicy)
	}
	if c.Workers < 1 {
		t.Errorf("default workers = %d", c.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad policy", func(c *Config) { c.CastlingPolicy = 7 }},
		{"negative pawn table", func(c *Config) { c.PawnTableKB = -1 }},
		{"huge pawn table", func(c *Config) { c.PawnTableKB = MaxPawnTableKB + 1 }},
		{"negative hash", func(c *Config) { c.HashMB = -1 }},
		{"huge hash", func(c *Config) { c.HashMB = MaxHashMB + 1 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"too many workers", func(c *Config) { c.Workers = MaxWorkers + 1 }},
		{"bad oracle", func(c *Config) { c.Oracle = 9 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			testutil.AssertErrorIs(t, c.Validate(), errors.ErrInvalidConfig)
		})
	}
}

func TestRegisterFlags(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.RegisterFlags(fs)

	err := fs.Parse([]string{
		"-castling", "standard",
		"-pawn-table", "0",
		"-hash", "16",
		"-workers", "3",
		"-cache",
		"-db", "/tmp/perft",
		"-oracle", "notnil",
		"-v",
	})
	testutil.AssertNoError(t, err)

	want := &Config{
		CastlingPolicy: board.CastlingStandard,
		PawnTableKB:    0,
		HashMB:         16,
		Workers:        3,
		CacheEnabled:   true,
		DBPath:         "/tmp/perft",
		Oracle:         OracleNotnil,
		Verbose:        true,
	}
	testutil.AssertEqual(t, c, want)
}

func TestRegisterFlagsRejectsBadPolicy(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.RegisterFlags(fs)

	if err := fs.Parse([]string{"-castling", "chess960"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSetOption(t *testing.T) {
	c := Default()
	testutil.AssertNoError(t, c.SetOption("CastlingPolicy", "Standard"))
	if c.CastlingPolicy != board.CastlingStandard {
		t.Errorf("policy = %v", c.CastlingPolicy)
	}
	testutil.AssertNoError(t, c.SetOption("Threads", "2"))
	if c.Workers != 2 {
		t.Errorf("workers = %d", c.Workers)
	}
	testutil.AssertNoError(t, c.SetOption("oracle", "dragontooth"))
	if c.Oracle != OracleDragontooth {
		t.Errorf("oracle = %v", c.Oracle)
	}

	testutil.AssertNoError(t, c.SetOption("Hash", "16"))
	if c.HashMB != 16 {
		t.Errorf("hash = %d", c.HashMB)
	}

	testutil.AssertErrorIs(t, c.SetOption("Bogus", "16"), errors.ErrInvalidConfig)
	testutil.AssertErrorIs(t, c.SetOption("Threads", "many"), errors.ErrInvalidConfig)
	testutil.AssertErrorIs(t, c.SetOption("Threads", "0"), errors.ErrInvalidConfig)
	testutil.AssertErrorIs(t, c.SetOption("CastlingPolicy", "fischer"), errors.ErrInvalidConfig)
}

func TestParseOracle(t *testing.T) {
	tests := []struct {
		in   string
		want Oracle
	}{
		{"", OracleNone},
		{"none", OracleNone},
		{"Dragontooth", OracleDragontooth},
		{"dragontoothmg", OracleDragontooth},
		{"notnil", OracleNotnil},
	}
	for _, tt := range tests {
		got, err := ParseOracle(tt.in)
		testutil.AssertNoError(t, err, tt.in)
		if got != tt.want {
			t.Errorf("ParseOracle(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if tt.in != "" && got.String() == "" {
			t.Errorf("empty String for %v", got)
		}
	}
	_, err := ParseOracle("stockfish")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidConfig)
}

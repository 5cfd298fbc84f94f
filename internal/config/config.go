// Package config provides the run configuration shared by the chesscore
// binaries: castling policy, evaluator cache size, perft workers, the perft
// result cache and the reference generator used for verification.
package config

import (
	"flag"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/errors"
)

// Oracle selects the reference move generator perft results are checked
// against.
type Oracle int

const (
	OracleNone        Oracle = iota // No cross-check
	OracleDragontooth               // github.com/dylhunn/dragontoothmg
	OracleNotnil                    // github.com/notnil/chess
)

func (o Oracle) String() string {
	switch o {
	case OracleNone:
		return "none"
	case OracleDragontooth:
		return "dragontooth"
	case OracleNotnil:
		return "notnil"
	}
	return fmt.Sprintf("Oracle(%d)", int(o))
}

// ParseOracle accepts "none", "dragontooth" or "notnil".
func ParseOracle(s string) (Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return OracleNone, nil
	case "dragontooth", "dragontoothmg":
		return OracleDragontooth, nil
	case "notnil", "notnil/chess":
		return OracleNotnil, nil
	}
	return OracleNone, fmt.Errorf("oracle %q: %w", s, errors.ErrInvalidConfig)
}

// Limits on numeric settings.
const (
	MaxHashMB      = 4096
	MaxPawnTableKB = 1 << 20 // 1 GiB
	MaxWorkers     = 256
	MaxDepth       = 12
)

// Config holds every tunable of a run.
type Config struct {
	// Rules
	CastlingPolicy board.CastlingPolicy

	// Evaluation
	PawnTableKB int // 0 disables the pawn structure cache

	// Perft
	HashMB       int  // in-memory subtree table, 0 disables
	Workers      int  // parallel root-move workers, 1 is sequential
	CacheEnabled bool // consult and fill the persistent perft cache
	DBPath       string
	Oracle       Oracle

	Verbose bool
}

// Default returns the configuration the binaries start from.
func Default() *Config {
	return &Config{
		CastlingPolicy: board.CastleOnly,
		PawnTableKB:    256,
		HashMB:         64,
		Workers:        runtime.NumCPU(),
		CacheEnabled:   false,
		Oracle:         OracleNone,
	}
}

// Validate reports the first out-of-range setting. The error wraps
// errors.ErrInvalidConfig.
func (c *Config) Validate() error {
	switch c.CastlingPolicy {
	case board.CastleOnly, board.CastlingStandard:
	default:
		return fmt.Errorf("castling policy %v: %w", c.CastlingPolicy, errors.ErrInvalidConfig)
	}
	if c.PawnTableKB < 0 || c.PawnTableKB > MaxPawnTableKB {
		return fmt.Errorf("pawn table size %d KB out of range [0, %d]: %w", c.PawnTableKB, MaxPawnTableKB, errors.ErrInvalidConfig)
	}
	if c.HashMB < 0 || c.HashMB > MaxHashMB {
		return fmt.Errorf("hash size %d MB out of range [0, %d]: %w", c.HashMB, MaxHashMB, errors.ErrInvalidConfig)
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers %d out of range [1, %d]: %w", c.Workers, MaxWorkers, errors.ErrInvalidConfig)
	}
	switch c.Oracle {
	case OracleNone, OracleDragontooth, OracleNotnil:
	default:
		return fmt.Errorf("oracle %v: %w", c.Oracle, errors.ErrInvalidConfig)
	}
	return nil
}

// RegisterFlags binds the configuration to fs. Values parsed later by fs
// are written straight into c.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(castlingFlag{&c.CastlingPolicy}, "castling", "castling rights policy: castle-only or standard")
	fs.IntVar(&c.PawnTableKB, "pawn-table", c.PawnTableKB, "pawn structure cache size in KB (0 disables)")
	fs.IntVar(&c.HashMB, "hash", c.HashMB, "perft subtree table size in MB (0 disables)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "parallel perft workers")
	fs.BoolVar(&c.CacheEnabled, "cache", c.CacheEnabled, "use the persistent perft cache")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "perft cache directory (default: platform data dir)")
	fs.Var(oracleFlag{&c.Oracle}, "oracle", "reference generator for -verify: dragontooth or notnil")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "verbose logging")
}

// SetOption applies a UCI "setoption name <name> value <value>" pair. Names
// are matched case-insensitively.
func (c *Config) SetOption(name, value string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "castlingpolicy":
		cp, err := board.ParseCastlingPolicy(value)
		if err != nil {
			return err
		}
		c.CastlingPolicy = cp
	case "pawntable", "pawntablekb":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("option %s=%q: %w", name, value, errors.ErrInvalidConfig)
		}
		c.PawnTableKB = n
	case "hash":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("option %s=%q: %w", name, value, errors.ErrInvalidConfig)
		}
		c.HashMB = n
	case "threads", "workers":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("option %s=%q: %w", name, value, errors.ErrInvalidConfig)
		}
		c.Workers = n
	case "oracle":
		o, err := ParseOracle(value)
		if err != nil {
			return err
		}
		c.Oracle = o
	default:
		return fmt.Errorf("unknown option %q: %w", name, errors.ErrInvalidConfig)
	}
	return c.Validate()
}

type castlingFlag struct{ p *board.CastlingPolicy }

func (f castlingFlag) String() string {
	if f.p == nil {
		return board.CastleOnly.String()
	}
	return f.p.String()
}

func (f castlingFlag) Set(s string) error {
	cp, err := board.ParseCastlingPolicy(s)
	if err != nil {
		return err
	}
	*f.p = cp
	return nil
}

type oracleFlag struct{ p *Oracle }

func (f oracleFlag) String() string {
	if f.p == nil {
		return OracleNone.String()
	}
	return f.p.String()
}

func (f oracleFlag) Set(s string) error {
	o, err := ParseOracle(s)
	if err != nil {
		return err
	}
	*f.p = o
	return nil
}

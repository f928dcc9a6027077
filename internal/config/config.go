package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.1.0"

// DefaultKeys covers a 6x6 grid, one row of keys per grid row.
const DefaultKeys = "123456qwertyasdfghzxcvbn7890-=uiop[]"

type Config struct {
	Song        string
	Beatmap     string
	BPM         float64
	Threshold   float64
	GridSize    int
	Delay       time.Duration
	Offset      time.Duration
	Volume      float64
	Keys        string
	FramePeriod time.Duration
	Database    string
	LogLevel    string
	LogFile     string
	Watch       bool
	Seed        int64
}

// LoadEnv reads KEY=value files into the environment without overriding
// what is already set. With no files it reads .env, which may be missing.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if nil != err && len(files) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Parse reads the command line. Flags fall back to TAIMURAGU_* variables.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	app := kingpin.New("taimuragu", "Click the grid on the beat.")
	app.Version(Version)
	app.HelpFlag.Short('h')

	app.Arg("song", "Audio file (mp3, ogg or wav)").StringVar(&c.Song)
	app.Flag("beatmap", "Beat map file, targets are generated from the beats when missing").
		Short('b').Envar("TAIMURAGU_BEATMAP").StringVar(&c.Beatmap)
	app.Flag("bpm", "Play a metronome at this tempo instead of a song").
		Envar("TAIMURAGU_BPM").Float64Var(&c.BPM)
	app.Flag("threshold", "Beat detection sensitivity").
		Default("1.3").Envar("TAIMURAGU_THRESHOLD").Float64Var(&c.Threshold)
	app.Flag("grid-size", "Cells per side of the grid").
		Default("6").Envar("TAIMURAGU_GRID_SIZE").IntVar(&c.GridSize)
	app.Flag("delay", "Start delay").
		Default("1.5s").Short('d').Envar("TAIMURAGU_DELAY").DurationVar(&c.Delay)
	app.Flag("offset", "Input latency, subtracted from click times").
		Default("0ms").Short('o').Envar("TAIMURAGU_OFFSET").DurationVar(&c.Offset)
	app.Flag("volume", "Playback volume between 0 and 1").
		Default("0.7").Envar("TAIMURAGU_VOLUME").Float64Var(&c.Volume)
	app.Flag("keys", "Keys for the grid cells, row by row").
		Default(DefaultKeys).Short('k').Envar("TAIMURAGU_KEYS").StringVar(&c.Keys)
	app.Flag("frame-period", "Render frame period").
		Default("4ms").Short('p').Envar("TAIMURAGU_FRAME_PERIOD").DurationVar(&c.FramePeriod)
	app.Flag("db", "Run history database").
		Default("scores.db").Envar("TAIMURAGU_DB").StringVar(&c.Database)
	app.Flag("log-level", "DEBUG, INFO, ERROR or NONE").
		Default("INFO").Envar("TAIMURAGU_LOG_LEVEL").EnumVar(&c.LogLevel, "DEBUG", "INFO", "ERROR", "NONE")
	app.Flag("log-file", "Log file, the terminal belongs to the game").
		Default("taimuragu.log").Envar("TAIMURAGU_LOG_FILE").StringVar(&c.LogFile)
	app.Flag("watch", "Reload the beat map when its file changes").
		Envar("TAIMURAGU_WATCH").BoolVar(&c.Watch)
	app.Flag("seed", "Seed for generated beat maps").
		Default("0").Envar("TAIMURAGU_SEED").Int64Var(&c.Seed)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}
	if err := c.validate(); nil != err {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Song == "" && c.BPM <= 0 {
		return errors.New("a song or a positive --bpm is required")
	}
	if c.GridSize < 1 {
		return fmt.Errorf("grid size must be at least 1, got %d", c.GridSize)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %v", c.Volume)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %v", c.Threshold)
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset can not be negative, got %v", c.Offset)
	}
	if c.FramePeriod <= 0 {
		return fmt.Errorf("frame period must be positive, got %v", c.FramePeriod)
	}
	seen := map[rune]bool{}
	for _, r := range c.Keys {
		if seen[r] {
			return fmt.Errorf("key %q is bound to more than one cell", r)
		}
		seen[r] = true
	}
	return nil
}

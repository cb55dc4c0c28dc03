package main

import (
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/scorebug/internal/config"
	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/domain/teams"
	"github.com/preston-bernstein/scorebug/internal/feed/wbsc"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/overlay"
	"github.com/preston-bernstein/scorebug/internal/render"
	"github.com/preston-bernstein/scorebug/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream games until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := logging.NewLogger(logging.Config{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Service: "scorebug",
			Version: appVersion,
			Output:  cmd.OutOrStdout(),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := server.New(cfg, logger)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

type renderOptions struct {
	snapshot  string
	play      int
	out       string
	font      string
	width     int
	height    int
	homeColor string
	awayColor string
}

var renderOpts = renderOptions{
	width:  games.DefaultResolution.X,
	height: games.DefaultResolution.Y,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the overlay for one recorded play file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := renderSnapshot(renderOpts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOpts.snapshot, "snapshot", "", "Recorded play JSON file")
	renderCmd.Flags().IntVar(&renderOpts.play, "play", 0, "Play index to stamp on the game (defaults to the file's playN suffix)")
	renderCmd.Flags().StringVar(&renderOpts.out, "out", overlay.DefaultFileName, "Output PNG path")
	renderCmd.Flags().StringVar(&renderOpts.font, "font", "", "TrueType font file (built-in font when empty)")
	renderCmd.Flags().IntVar(&renderOpts.width, "width", renderOpts.width, "Overlay width")
	renderCmd.Flags().IntVar(&renderOpts.height, "height", renderOpts.height, "Overlay height")
	renderCmd.Flags().StringVar(&renderOpts.homeColor, "home-color", "", "Home primary color as #rrggbb")
	renderCmd.Flags().StringVar(&renderOpts.awayColor, "away-color", "", "Away primary color as #rrggbb")
	_ = renderCmd.MarkFlagRequired("snapshot")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(renderCmd)
}

// renderSnapshot decodes a recorded play, applies it to a fresh game and publishes
// the composed overlay. It returns the published path.
func renderSnapshot(opts renderOptions) (string, error) {
	f, err := os.Open(opts.snapshot)
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	play := opts.play
	if play == 0 {
		play = playFromName(opts.snapshot)
	}
	snap, err := wbsc.DecodePlay(f, play)
	if err != nil {
		return "", err
	}

	home, err := identityFlag(opts.homeColor)
	if err != nil {
		return "", fmt.Errorf("home color: %w", err)
	}
	away, err := identityFlag(opts.awayColor)
	if err != nil {
		return "", fmt.Errorf("away color: %w", err)
	}
	game, err := games.New(games.Options{
		ID:         snapshotGameID(opts.snapshot),
		Mode:       games.ModeReplay,
		ReplayMode: games.ReplaySequence,
		Resolution: image.Pt(opts.width, opts.height),
		Home:       home,
		Away:       away,
	})
	if err != nil {
		return "", err
	}
	game.Update(snap)

	fonts, err := render.NewFonts(opts.font)
	if err != nil {
		return "", err
	}
	frame := overlay.NewCompositor(render.New(fonts)).Compose(game)

	publisher := overlay.NewPublisher(filepath.Dir(opts.out), filepath.Base(opts.out))
	if _, err := publisher.Publish(frame); err != nil {
		return "", err
	}
	return publisher.Path(), nil
}

func identityFlag(hex string) (teams.Identity, error) {
	if hex == "" {
		return teams.Identity{}, nil
	}
	c, err := render.ParseHex(hex)
	if err != nil {
		return teams.Identity{}, err
	}
	return teams.Identity{Primary: c}, nil
}

// playFromName reads N from a playN.json file name; other names give 1.
func playFromName(path string) int {
	var n int
	if _, err := fmt.Sscanf(filepath.Base(path), "play%d.json", &n); err != nil || n < 1 {
		return 1
	}
	return n
}

// snapshotGameID uses the archive directory name when the file lives in one.
func snapshotGameID(path string) string {
	if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
		return dir
	}
	return "offline"
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/companion/internal/life"
	"github.com/rcliao/companion/internal/logger"
	"github.com/rcliao/companion/internal/scheduler"
)

var runLog = logger.ForComponent("cli")

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep the companion alive and chat on stdin",
		Long: "Starts the heartbeat and autosaver, then reads one message per line from stdin. " +
			"Runs until stdin closes or the process receives SIGINT or SIGTERM.",
		Run: runRun,
	}

	cmd.Flags().Bool("quiet", false, "Do not read stdin; just keep the companion alive")

	RootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) {
	quiet, _ := cmd.Flags().GetBool("quiet")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s := openSession(ctx)
	c := s.companion

	saver := life.NewAutosaver(c, s.provider, s.cfg.AutosaveInterval)
	hb := scheduler.New(c, s.cfg.Heartbeat, scheduler.WithOnBeat(saver.Request))

	saver.Start(ctx)
	if err := hb.Start(ctx); err != nil {
		exitErr("start heartbeat", err)
	}

	st := c.Status()
	runLog.Info("companion awake", "name", st.Name, "age", st.Age, "mood", st.Mood.Key)
	fmt.Printf("%s is here. (%s, %s)\n", st.Name, st.Mood.Label, st.Activity.Label)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	lines := make(chan string)
	if !quiet {
		go readLines(lines)
	}

loop:
	for {
		select {
		case <-sigCh:
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			chatLine(ctx, c, line)
		}
	}

	hb.Stop()
	saver.Stop()
	cancel()
	s.close(context.Background())

	stats := hb.Stats()
	runLog.Info("companion resting", "beats", stats.Beats, "cycles", stats.AutonomousCycles)
}

func readLines(out chan<- string) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- sc.Text()
	}
	close(out)
}

func chatLine(ctx context.Context, c *life.Companion, line string) {
	res, err := c.Chat(ctx, line)
	if errors.Is(err, life.ErrEmptyMessage) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println(strings.TrimSpace(res.Reply))
	for _, t := range c.DueTasks() {
		fmt.Printf("(reminder) %s [%s]\n", t.Content, t.ID)
	}
}

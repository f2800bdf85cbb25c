package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sakky016/ApplicationWatchdog/internal/heartbeat"
	"github.com/sakky016/ApplicationWatchdog/internal/kvutil"
	"github.com/sakky016/ApplicationWatchdog/internal/natsutil"
	"github.com/sakky016/ApplicationWatchdog/types"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show supervisor status mirrored to NATS KV",
	Long: `Read the status entries written by 'watchdog run --status' and print them.
With a name, show only that application; otherwise list every application in
the bucket.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	nc, err := nats.Connect(cfg.Status.NATSURL, nats.Name("watchdog-status-cli"))
	if err != nil {
		if natsutil.IsConnectivityError(err) {
			return fmt.Errorf("%w: %s: %w", types.ErrConnectivity, cfg.Status.NATSURL, err)
		}

		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Status.NATSURL, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := kvutil.OpenKVBucket(cmd.Context(), js, cfg.Status.Bucket)
	if err != nil {
		return err
	}

	reader := heartbeat.NewReader(kv, cfg.Status.Prefix)

	var statuses []types.Status
	if len(args) == 1 {
		st, err := reader.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		statuses = []types.Status{st}
	} else {
		statuses, err = reader.List(cmd.Context())
		if err != nil {
			return err
		}
	}

	return renderStatuses(os.Stdout, statuses, IsJSONOutput(), time.Now())
}

// renderStatuses writes statuses as a table or as indented JSON.
func renderStatuses(w io.Writer, statuses []types.Status, asJSON bool, now time.Time) error {
	if asJSON {
		output, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(output))

		return err
	}

	if len(statuses) == 0 {
		_, err := fmt.Fprintln(w, "No status entries found")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Name", "State", "Misses", "Generation", "Worker ID", "Restarts", "Last Poll")

	for _, st := range statuses {
		table.Append(
			st.Name,
			st.StateName,
			fmt.Sprintf("%d/%d", st.ConsecutiveMisses, st.MaxWarnings),
			strconv.FormatUint(st.Generation, 10),
			shortID(st.WorkerID),
			strconv.FormatUint(st.Restarts, 10),
			formatAge(now, st.ObservedAt),
		)
	}

	table.Render()
	_, err := fmt.Fprintf(w, "\nTotal: %d\n", len(statuses))

	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}

	return id
}

func formatAge(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return now.Sub(t).Truncate(time.Second).String() + " ago"
}

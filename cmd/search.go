package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/csdex/csdex/internal/config"
	"github.com/csdex/csdex/internal/daemon"
	"github.com/csdex/csdex/internal/rpc"
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Search indexed types by name, file, modifier, or member",
	Example: "  csdex search Pawn\n  csdex search abstract -n 50",
	Args:    cobra.ExactArgs(1),
	Run:     runSearch,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and payload status",
	Run:   runStatus,
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Refetch all payloads and rebuild the index",
	Run:   runReload,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	Run:   runStop,
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Delete cached payloads and reset the search cache",
	Run:   runClearCache,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum results to print")
}

func runSearch(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := client.Search(ctx, rpc.SearchRequest{Query: args[0], Limit: searchLimit})
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}

	if len(resp.Results) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, r := range resp.Results {
		fmt.Printf("%-40s %-10s %s:%d (%s, %d)\n", r.Name, r.Kind, r.File, r.Line, r.MatchKind, r.Relevance)
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := client.Status(ctx)
	if err != nil {
		log.Fatalf("status failed: %v", err)
	}

	if !st.Loaded {
		fmt.Println("catalog: not loaded")
		return
	}
	fmt.Printf("catalog: %d types, %d members (generated %s)\n", st.TotalTypes, st.TotalMembers, st.GeneratedAt)

	kinds := make([]string, 0, len(st.TypeCounts))
	for k := range st.TypeCounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-12s %d\n", k, st.TypeCounts[k])
	}

	fmt.Printf("comments: %d\n", st.Comments)
	fmt.Printf("xml links loaded: %v\n", st.XMLLinksLoaded)
	fmt.Printf("translations loaded: %v\n", st.TranslationsLoaded)
}

func runReload(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resp, err := client.Reload(ctx)
	if err != nil {
		log.Fatalf("reload failed: %v", err)
	}
	fmt.Printf("reloaded: %d types\n", resp.Types)
}

func runStop(cmd *cobra.Command, args []string) {
	client := daemon.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon not running")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Shutdown(ctx); err != nil {
		log.Fatalf("stop failed: %v", err)
	}
	fmt.Println("daemon stopped")
}

func runClearCache(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.ClearCache(ctx); err != nil {
		log.Fatalf("clear-cache failed: %v", err)
	}
	fmt.Println("cache cleared")
}

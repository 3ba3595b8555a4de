package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/csdex/csdex/internal/catalog"
	"github.com/csdex/csdex/internal/rpc"
	"github.com/spf13/cobra"
)

var (
	typeMember     string
	categoryOffset int
	categoryLimit  int
)

var typeCmd = &cobra.Command{
	Use:     "type <name>",
	Short:   "Print the rendered documentation for a type",
	Example: "  csdex type ThingDef\n  csdex type Pawn -m Kill",
	Args:    cobra.ExactArgs(1),
	Run:     runType,
}

var categoryCmd = &cobra.Command{
	Use:   "category <kind>",
	Short: "List all types of a kind (" + strings.Join(catalog.Kinds, ", ") + ")",
	Args:  cobra.ExactArgs(1),
	Run:   runCategory,
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy <name>",
	Short: "Show base and derived types",
	Args:  cobra.ExactArgs(1),
	Run:   runHierarchy,
}

var refsCmd = &cobra.Command{
	Use:   "refs <name>",
	Short: "List types whose member signatures reference this type",
	Args:  cobra.ExactArgs(1),
	Run:   runRefs,
}

var overridesCmd = &cobra.Command{
	Use:   "overrides <type> <member>",
	Short: "Show what a member overrides and what overrides it",
	Args:  cobra.ExactArgs(2),
	Run:   runOverrides,
}

func init() {
	typeCmd.Flags().StringVarP(&typeMember, "member", "m", "", "narrow output to a single member")
	categoryCmd.Flags().IntVar(&categoryOffset, "offset", 0, "skip this many types")
	categoryCmd.Flags().IntVar(&categoryLimit, "limit", 0, "maximum types to list (0 = all)")
}

func runType(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := client.GetType(ctx, rpc.GetTypeRequest{Name: args[0], Member: typeMember})
	if err != nil {
		log.Fatalf("type lookup failed: %v", err)
	}
	fmt.Print(resp.Markdown)
}

func runCategory(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := client.Category(ctx, rpc.CategoryRequest{
		Kind:   args[0],
		Offset: categoryOffset,
		Limit:  categoryLimit,
	})
	if err != nil {
		log.Fatalf("category listing failed: %v", err)
	}

	fmt.Printf("%s: %d total\n", resp.Kind, resp.Total)
	for _, t := range resp.Types {
		fmt.Printf("  %-40s %s:%d\n", t.Name, t.File, t.Line)
	}
}

func runHierarchy(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := client.Hierarchy(ctx, rpc.HierarchyRequest{Name: args[0]})
	if err != nil {
		log.Fatalf("hierarchy lookup failed: %v", err)
	}

	fmt.Println(resp.Name)
	if len(resp.Bases) > 0 {
		fmt.Printf("  inherits: %s\n", strings.Join(resp.Bases, ", "))
	}
	for _, d := range resp.Derived {
		fmt.Printf("  derived:  %s\n", d)
	}
	if len(resp.Bases) == 0 && len(resp.Derived) == 0 {
		fmt.Println("  no known bases or derived types")
	}
}

func runRefs(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := client.References(ctx, rpc.ReferencesRequest{Name: args[0]})
	if err != nil {
		log.Fatalf("reference lookup failed: %v", err)
	}

	if len(resp.Referencers) == 0 {
		fmt.Printf("no indexed types reference %s\n", resp.Name)
		return
	}
	for _, name := range resp.Referencers {
		fmt.Println(name)
	}
}

func runOverrides(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		log.Fatalf("failed to connect to daemon: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := client.Overrides(ctx, rpc.OverridesRequest{Type: args[0], Member: args[1]})
	if err != nil {
		log.Fatalf("override lookup failed: %v", err)
	}

	if !resp.Found {
		fmt.Printf("%s.%s has no override relationships\n", args[0], args[1])
		return
	}
	if resp.Overrides != "" {
		fmt.Printf("overrides:     %s\n", resp.Overrides)
	}
	for _, key := range resp.OverriddenBy {
		fmt.Printf("overridden by: %s\n", key)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gitrdm/dltableau/pkg/tableau"
)

var (
	ontologyPath string
	configPath   string
	verbose      bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tableau",
		Short: "A SROIQ(D) tableau reasoner over a YAML ontology description",
	}
	root.PersistentFlags().StringVarP(&ontologyPath, "ontology", "o", "", "path to the YAML ontology description (required)")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML reasoning-flags file (optional)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode logging")
	_ = root.MarkPersistentFlagRequired("ontology")

	root.AddCommand(classifyCmd(), consistentCmd(), satCmd(), subCmd())
	return root
}

func loadReasoner() (*tableau.Reasoner, map[string]tableau.BP, error) {
	cfg := tableau.DefaultConfig()
	if configPath != "" {
		loaded, err := tableau.LoadConfig(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("tableau: loading config: %w", err)
		}
		cfg = loaded
	}
	cfg.Verbose = cfg.Verbose || verbose

	o, err := loadOntology(ontologyPath)
	if err != nil {
		return nil, nil, err
	}
	return build(o, cfg)
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify every named concept and print the taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := loadReasoner()
			if err != nil {
				return err
			}
			g, synonyms, err := r.Classify(context.Background(), nil)
			if err != nil {
				return err
			}
			names := g.Vertices()
			sort.Strings(names)
			for _, n := range names {
				if syn, ok := synonyms[n]; ok && syn != n {
					continue
				}
				children := g.Children(n)
				sort.Strings(children)
				fmt.Printf("%s -> %v\n", n, children)
			}
			return nil
		},
	}
}

func consistentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistent",
		Short: "Decide whether the ontology (TBox + ABox) is consistent",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := loadReasoner()
			if err != nil {
				return err
			}
			ok, err := r.IsConsistent(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
}

func satCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "sat",
		Short: "Decide whether a named concept is satisfiable",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, concepts, err := loadReasoner()
			if err != nil {
				return err
			}
			bp, ok := concepts[name]
			if !ok {
				return fmt.Errorf("tableau: unknown concept %q", name)
			}
			sat, err := r.IsSatisfiable(context.Background(), bp)
			if err != nil {
				return err
			}
			fmt.Println(sat)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "concept", "", "concept name to test (required)")
	_ = cmd.MarkFlagRequired("concept")
	return cmd
}

func subCmd() *cobra.Command {
	var sub, super string
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Decide whether sub is subsumed by super (sub ⊑ super)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, concepts, err := loadReasoner()
			if err != nil {
				return err
			}
			c, ok := concepts[sub]
			if !ok {
				return fmt.Errorf("tableau: unknown concept %q", sub)
			}
			d, ok := concepts[super]
			if !ok {
				return fmt.Errorf("tableau: unknown concept %q", super)
			}
			holds, err := r.IsSubHolds(context.Background(), c, d)
			if err != nil {
				return err
			}
			fmt.Println(holds)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "", "the (putative) subsumee (required)")
	cmd.Flags().StringVar(&super, "super", "", "the (putative) subsumer (required)")
	_ = cmd.MarkFlagRequired("sub")
	_ = cmd.MarkFlagRequired("super")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonkit/pkg/cells"
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/difftest"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/store"
)

// difftestOpts holds options for the difftest command.
type difftestOpts struct {
	set       []string
	storeURL  string
	update    bool
	forget    bool
	precision float64
}

// difftestCommand guards cell geometry against stored reference digests.
func (c *CLI) difftestCommand() *cobra.Command {
	opts := difftestOpts{}

	cmd := &cobra.Command{
		Use:   "difftest <factory>...",
		Short: "Compare cell geometry with stored references",
		Long: `Build each factory and compare its geometry hash with the stored
reference. A missing reference is recorded. A changed hash fails the
command and lists the per-layer area changes, unless --update is given.

References live in the file store under the cache directory by default.
--store accepts file://, redis:// and mongodb:// URLs.`,
		Example: `  photonkit difftest straight bend_euler pad
  photonkit difftest taper --set width2=2 --update
  photonkit difftest pad --store redis://localhost:6379/0`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeFactories,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDifftest(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.set, "set", "s", nil, "parameter as key=value, applied to every factory")
	cmd.Flags().StringVar(&opts.storeURL, "store", "", "reference store URL (default: file store under the cache directory)")
	cmd.Flags().BoolVar(&opts.update, "update", false, "overwrite changed references")
	cmd.Flags().BoolVar(&opts.forget, "forget", false, "delete the references instead of checking")
	cmd.Flags().Float64Var(&opts.precision, "precision", difftest.DefaultPrecision, "coordinate quantum for hashing in µm")

	return cmd
}

func (c *CLI) runDifftest(cmd *cobra.Command, factories []string, opts difftestOpts) error {
	ctx := cmd.Context()
	out := c.stdout()

	url := opts.storeURL
	if url == "" {
		var err error
		if url, err = defaultStoreURL(); err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
	}
	s, err := store.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("open store %s: %w", url, err)
	}
	defer s.Close()

	reg, err := c.newRegistry(cmd)
	if err != nil {
		return err
	}
	params, err := cells.ParseParams(opts.set)
	if err != nil {
		return err
	}

	checkOpts := []difftest.Option{
		difftest.WithPrecision(opts.precision),
		difftest.WithLayers(reg.PDK().Layers),
		difftest.WithLogger(c.Logger),
	}
	if opts.update {
		checkOpts = append(checkOpts, difftest.WithUpdate())
	}
	// References of different kits share one backend.
	checker := difftest.New(store.NewScoped(s, "pdk:"+reg.PDK().Name+":"), checkOpts...)

	spin := newSpinner(ctx, out, fmt.Sprintf("Building %d cells...", len(factories)))
	spin.Start()
	comps := make([]*component.Component, 0, len(factories))
	for _, f := range factories {
		comp, err := reg.Build(f, params)
		if err != nil {
			spin.StopWithError("%s: %s", f, errors.UserMessage(err))
			return err
		}
		comps = append(comps, comp)
	}
	spin.Stop()

	if opts.forget {
		for _, comp := range comps {
			if err := checker.Forget(ctx, comp.Name()); err != nil {
				return err
			}
			printInfo(out, "Forgot %s", comp.Name())
		}
		return nil
	}

	results, err := checker.CheckAll(ctx, comps...)
	for _, res := range results {
		printResult(c, res)
	}
	if err != nil && errors.Is(err, errors.ErrCodeGeometryChanged) {
		printNextStep(out, "Accept the changes", "rerun with --update")
	}
	return err
}

func printResult(c *CLI, res difftest.Result) {
	out := c.stdout()
	switch res.Status {
	case difftest.StatusMatch:
		printSuccess(out, "%s unchanged", res.Name)
	case difftest.StatusNew:
		printInfo(out, "%s recorded", res.Name)
	case difftest.StatusUpdated:
		printWarning(out, "%s updated", res.Name)
	case difftest.StatusChanged:
		printError(out, "%s changed", res.Name)
	}
	for _, d := range res.Deltas {
		printDetail(out, "%s: %.6g → %.6g µm²", d.Name, d.Before, d.After)
	}
}

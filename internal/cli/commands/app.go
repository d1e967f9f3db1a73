package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/approuter/internal/icon"
	"github.com/leapstack-labs/approuter/internal/store"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// NewAppCommand creates the app command group.
func NewAppCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Manage apps in the app store",
		Long:  `Create apps, attach icon variants and list the apps the router can serve.`,
	}

	cmd.AddCommand(newAppCreateCommand())
	cmd.AddCommand(newAppIconCommand())
	cmd.AddCommand(newAppListCommand())

	return cmd
}

// AppCreateOptions holds options for the app create command.
type AppCreateOptions struct {
	Definition     string
	Icon           string
	MaskableIcon   string
	IconBackground string
	CoreStyle      string
	SharedStyle    string
	Visibility     string
	Locked         bool
}

func newAppCreateCommand() *cobra.Command {
	opts := &AppCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an app from a definition file",
		Long: `Create an app from a YAML or JSON definition file. Fields the router does
not use are kept in the stored definition.`,
		Example: `  approuter app create --definition app.yaml --icon icon.png --core-style core.css`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := opts.newApp()
			if err != nil {
				return err
			}

			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			id, err := s.CreateApp(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created app %d (%s)\n", id, in.Definition.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Definition, "definition", "", "YAML or JSON app definition file (required)")
	cmd.Flags().StringVar(&opts.Icon, "icon", "", "Icon image file")
	cmd.Flags().StringVar(&opts.MaskableIcon, "maskable-icon", "", "Maskable icon image file")
	cmd.Flags().StringVar(&opts.IconBackground, "icon-background", "", "Background color composited under the maskable icon")
	cmd.Flags().StringVar(&opts.CoreStyle, "core-style", "", "Core stylesheet file")
	cmd.Flags().StringVar(&opts.SharedStyle, "shared-style", "", "Shared stylesheet file")
	cmd.Flags().StringVar(&opts.Visibility, "visibility", string(core.VisibilityUnlisted), "Visibility (public|unlisted|private)")
	cmd.Flags().BoolVar(&opts.Locked, "locked", false, "Mark the app as locked")
	_ = cmd.MarkFlagRequired("definition")

	return cmd
}

// newApp reads every file named by the options.
func (o *AppCreateOptions) newApp() (store.NewApp, error) {
	def, err := readDefinition(o.Definition)
	if err != nil {
		return store.NewApp{}, err
	}
	if o.IconBackground != "" {
		if _, err := icon.ParseColor(o.IconBackground); err != nil {
			return store.NewApp{}, fmt.Errorf("--icon-background: %w", err)
		}
	}

	in := store.NewApp{
		Definition:     def,
		IconBackground: o.IconBackground,
		Visibility:     core.Visibility(o.Visibility),
		Locked:         o.Locked,
	}
	if in.Icon, err = readImage(o.Icon); err != nil {
		return store.NewApp{}, err
	}
	if in.MaskableIcon, err = readImage(o.MaskableIcon); err != nil {
		return store.NewApp{}, err
	}
	if in.CoreStyle, err = readText(o.CoreStyle); err != nil {
		return store.NewApp{}, err
	}
	if in.SharedStyle, err = readText(o.SharedStyle); err != nil {
		return store.NewApp{}, err
	}
	return in, nil
}

// readDefinition parses a YAML (or JSON) definition and keeps the complete
// document as JSON.
func readDefinition(path string) (core.Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return core.Definition{}, fmt.Errorf("failed to read definition: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.Definition{}, fmt.Errorf("invalid definition %s: %w", path, err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return core.Definition{}, fmt.Errorf("invalid definition %s: %w", path, err)
	}

	def, err := core.ParseDefinition(raw)
	if err != nil {
		return core.Definition{}, fmt.Errorf("invalid definition %s: %w", path, err)
	}
	return def, nil
}

// readImage reads an image file and checks that it decodes. An empty path
// returns nil.
func readImage(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if _, err := icon.Decode(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet: %w", err)
	}
	return string(data), nil
}

func newAppIconCommand() *cobra.Command {
	var size string

	cmd := &cobra.Command{
		Use:     "icon <id> <file>",
		Short:   "Store a per-size icon variant",
		Long:    `Store an image as the icon variant the router serves for one size.`,
		Example: `  approuter app icon 3 --size 192 icon-192.png`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid app id %q", args[0])
			}
			n, err := icon.ParseSize(size)
			if err != nil {
				return fmt.Errorf("--size: %w", err)
			}
			data, err := readImage(args[1])
			if err != nil {
				return err
			}

			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.SetIconVariant(cmd.Context(), id, n, data); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored %dx%d icon for app %d\n", n, n, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "Icon size in pixels (required)")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func newAppListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List apps",
		Long:  `List every app in the app store.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			apps, err := s.ListApps(cmd.Context())
			if err != nil {
				return err
			}
			renderApps(cmd.OutOrStdout(), apps)
			return nil
		},
	}
}

func renderApps(w io.Writer, apps []store.AppSummary) {
	if len(apps) == 0 {
		_, _ = fmt.Fprintln(w, "(0 apps)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Visibility", "Locked", "Icon", "Updated"})
	for _, app := range apps {
		t.AppendRow(table.Row{
			app.ID,
			app.Name(),
			app.Visibility,
			app.Locked,
			app.HasIcon,
			app.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	t.Render()
}

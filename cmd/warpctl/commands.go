package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/waypoint/internal/host"
	"github.com/udisondev/waypoint/internal/position"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "warpctl",
		Short:         "Inspect positions and manage warps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $WAYPOINT_CONFIG or "+DefaultConfigPath+")")

	root.AddCommand(
		newTransformCmd("decode", "Decode a position and print its structured form", &configPath,
			func(p position.Position) position.Position { return p }),
		newTransformCmd("center", "Snap a position to the center of its block", &configPath,
			position.Position.Centered),
		newTransformCmd("block", "Snap a position to the origin of its block", &configPath,
			position.Position.Block),
		newCompactCmd(&configPath),
		newNBTCmd(&configPath),
		newChunkCmd(&configPath),
		newAtCmd(&configPath),
		newMigrateCmd(&configPath),
		newWarpCmd(&configPath),
	)
	return root
}

func newTransformCmd(use, short string, configPath *string, fn func(position.Position) position.Position) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <payload>",
		Short:   short,
		Example: fmt.Sprintf("warpctl %s 'world:10.2:64:-3.7'", use),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(*configPath)
			if err != nil {
				return err
			}
			p, err := a.decodeArg(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, a, fn(p))
		},
	}
}

func newCompactCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compact <payload>",
		Short: "Print a position in the legacy compact form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(*configPath)
			if err != nil {
				return err
			}
			p, err := a.decodeArg(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), position.FormatCompact(p))
			return err
		},
	}
}

func newNBTCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "nbt <payload>",
		Short: "Print a position as base64-encoded NBT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(*configPath)
			if err != nil {
				return err
			}
			p, err := a.decodeArg(args[0])
			if err != nil {
				return err
			}
			data, err := a.codec.MarshalNBT(p)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(data))
			return err
		},
	}
}

func newChunkCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chunk <payload>",
		Short: "Print the chunk and region containing a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(*configPath)
			if err != nil {
				return err
			}
			p, err := a.decodeArg(args[0])
			if err != nil {
				return err
			}
			c := p.Chunk()
			r := c.Region()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "chunk %d %d region r.%d.%d.mca\n", c.X, c.Z, r.X, r.Z)
			return err
		},
	}
}

func newAtCmd(configPath *string) *cobra.Command {
	var worldName string
	var yaw, pitch float32

	cmd := &cobra.Command{
		Use:   "at <x> <y> <z>",
		Short: "Build a position from coordinates",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(*configPath)
			if err != nil {
				return err
			}

			var coords [3]float64
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("parsing coordinate %q: %w", arg, err)
				}
				coords[i] = v
			}

			var p position.Position
			if worldName == "" {
				p, err = a.factory.At(coords[0], coords[1], coords[2])
				if err == nil {
					p = p.WithYaw(yaw).WithPitch(pitch)
				}
			} else {
				p, err = a.factory.AtOrientedIn(coords[0], coords[1], coords[2], yaw, pitch, worldName)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, a, p)
		},
	}
	cmd.Flags().StringVarP(&worldName, "world", "w", "", "world name (default: default_world from config)")
	cmd.Flags().Float32Var(&yaw, "yaw", 0, "yaw in degrees")
	cmd.Flags().Float32Var(&pitch, "pitch", 0, "pitch in degrees")
	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and register configured worlds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := storeApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer a.close()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "worlds: %s\n", strings.Join(a.worlds.Names(), ", "))
			return err
		},
	}
}

func newWarpCmd(configPath *string) *cobra.Command {
	warpCmd := &cobra.Command{
		Use:   "warp",
		Short: "Manage named warps",
	}

	warpCmd.AddCommand(
		&cobra.Command{
			Use:   "set <name> <payload>",
			Short: "Create or replace a warp",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := storeApp(cmd, *configPath)
				if err != nil {
					return err
				}
				defer a.close()

				p, err := a.decodeArg(args[1])
				if err != nil {
					return err
				}
				return a.service.Set(cmd.Context(), args[0], p)
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Print a warp",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := storeApp(cmd, *configPath)
				if err != nil {
					return err
				}
				defer a.close()

				w, err := a.service.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, a, w.Position)
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a warp",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := storeApp(cmd, *configPath)
				if err != nil {
					return err
				}
				defer a.close()
				return a.service.Delete(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List warps",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := storeApp(cmd, *configPath)
				if err != nil {
					return err
				}
				defer a.close()

				warps, err := a.service.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, w := range warps {
					if _, err := fmt.Fprintf(out, "%-24s %s\n", w.Name, position.FormatCompact(w.Position)); err != nil {
						return err
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "import <file.yaml>",
			Short: "Import warps from a YAML map of name to compact string or structured object",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := storeApp(cmd, *configPath)
				if err != nil {
					return err
				}
				defer a.close()

				entries, err := readImportFile(args[0])
				if err != nil {
					return err
				}
				n, err := a.service.Import(cmd.Context(), entries)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d warps\n", n)
				return err
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Import the warps listed in the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := storeApp(cmd, *configPath)
				if err != nil {
					return err
				}
				defer a.close()

				n, err := a.service.ImportCompact(cmd.Context(), a.cfg.Warps)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d warps\n", n)
				return err
			},
		},
		&cobra.Command{
			Use:   "tp <name>",
			Short: "Dry-run a teleport against an in-memory host and print the landing location",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := storeApp(cmd, *configPath)
				if err != nil {
					return err
				}
				defer a.close()

				entity := host.NewMemoryEntity(host.Location{})
				if err := a.service.Teleport(cmd.Context(), args[0], entity); err != nil {
					return err
				}
				loc := entity.Location()
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %g %g %g yaw=%g pitch=%g\n",
					loc.World.Name(), loc.X, loc.Y, loc.Z, loc.Yaw, loc.Pitch)
				return err
			},
		},
	)
	return warpCmd
}

func offlineApp(configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return newOfflineApp(cfg)
}

func storeApp(cmd *cobra.Command, configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return newStoreApp(cmd.Context(), cfg)
}

func printJSON(cmd *cobra.Command, a *app, p position.Position) error {
	data, err := a.codec.Marshal(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// readImportFile reads a YAML map whose values are either compact strings
// or structured objects, and re-encodes each value as JSON for the codec.
func readImportFile(path string) (map[string][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	entries := make(map[string][]byte, len(raw))
	for name, node := range raw {
		payload, err := yamlNodeToJSON(&node)
		if err != nil {
			return nil, fmt.Errorf("warp %q in %s: %w", name, path, err)
		}
		entries[name] = payload
	}
	return entries, nil
}

func yamlNodeToJSON(node *yaml.Node) ([]byte, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return json.Marshal(node.Value)
	case yaml.MappingNode:
		// Ключи не трогаем: регистр проверяет codec
		obj := make(map[string]any, len(node.Content)/2)
		if err := node.Decode(&obj); err != nil {
			return nil, err
		}
		return json.Marshal(obj)
	default:
		return nil, fmt.Errorf("expected string or mapping, got yaml kind %d", node.Kind)
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/gostruct"
	"github.com/reoring/gostruct/i18n"
	"github.com/reoring/gostruct/internal/config"
	"github.com/reoring/gostruct/schemafile"
	"github.com/reoring/gostruct/validate"
)

// env is the state shared by every command run.
type env struct {
	cfg *config.Config
	log *zap.Logger
	reg *gostruct.Registry
}

func setup(cmd *cobra.Command) (*env, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	cfg, err := config.Load(dir, cmd.Flags())
	if err != nil {
		return nil, err
	}
	i18n.SetLanguage(cfg.Lang)

	logger := newLogger(cfg.LogLevel, cmd.ErrOrStderr())

	u := gostruct.NewUniverse()
	names, err := schemafile.LoadFile(u, cfg.Schema)
	if err != nil {
		return nil, err
	}
	logger.Debug("schema loaded", zap.String("file", cfg.Schema), zap.Strings("types", names))

	opts := []gostruct.Option{gostruct.WithLogger(logger)}
	if cfg.Strict {
		opts = append(opts, gostruct.WithStrictRedefinition())
	}
	return &env{cfg: cfg, log: logger, reg: gostruct.NewRegistry(u, opts...)}, nil
}

// newLogger builds a console logger writing to w, falling back to a no-op
// logger when the level is invalid.
func newLogger(level string, w io.Writer) *zap.Logger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
}

func isStdin(name string) bool { return name == "" || name == "-" }

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if isStdin(name) {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (e *env) writeStruct(cmd *cobra.Command, s *gostruct.Struct) error {
	var (
		b   []byte
		err error
	)
	if e.cfg.Pretty {
		b, err = s.ToJSONIndent()
	} else {
		b, err = s.ToJSON()
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <type> [file]",
		Short: "Validate a JSON document against a struct type",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			data, err := readInput(cmd, argAt(args, 1))
			if err != nil {
				return err
			}
			v, err := validate.New(e.reg, args[0])
			if err != nil {
				return err
			}
			if err := v.ValidateJSON(data); err != nil {
				return err
			}
			if _, err := e.reg.CreateFromJSON(args[0], data); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <type> [file]",
		Short: "Materialize a JSON document and print its normalized form",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			data, err := readInput(cmd, argAt(args, 1))
			if err != nil {
				return err
			}
			s, err := e.reg.CreateFromJSON(args[0], data)
			if err != nil {
				return err
			}
			return e.writeStruct(cmd, s)
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [type]",
		Short: "Print the JSON Schema of a struct type, or list the struct types",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			if len(args) == 0 {
				for _, name := range e.reg.Universe().StructNames() {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}
				return nil
			}
			doc, err := e.reg.JSONSchema(args[0])
			if err != nil {
				return err
			}
			var b []byte
			if e.cfg.Pretty {
				b, err = json.MarshalIndent(doc, "", "    ")
			} else {
				b, err = json.Marshal(doc)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}

func newDirtyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dirty <type> <base> <changes>",
		Short: "Apply changes to a clean base document and print only what changed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if isStdin(args[1]) && isStdin(args[2]) {
				return errors.New("base and changes cannot both be read from stdin")
			}
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			base, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			changes, err := readInput(cmd, args[2])
			if err != nil {
				return err
			}
			s, err := e.reg.CreateFromJSON(args[0], base)
			if err != nil {
				return err
			}
			s.Clean()
			patch, err := gostruct.DecodeJSON(changes)
			if err != nil {
				return err
			}
			if err := s.ApplyUntyped(patch); err != nil {
				return err
			}
			e.log.Debug("changes applied", zap.String("type", args[0]), zap.Int("dirty", len(s.GetDirtyProperties())))
			return e.writeStruct(cmd, s.WithDirtyPropertiesOnly())
		},
	}
}

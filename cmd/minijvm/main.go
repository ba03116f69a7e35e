// Command minijvm runs a single compiled class file against the
// interpreter: it reads the class bytes directly (the classpath is only
// consulted for classes *referenced* by the program), decodes it, and
// invokes its static main([Ljava/lang/String;)V entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minijvm/classfile"
	"minijvm/internal/vmconfig"
	"minijvm/internal/vmlog"
	"minijvm/vm"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "minijvm <path-to-class-file>",
		Short: "A minimal interpreter for a JVM SE 7 class-file subset",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "minijvm.toml", "path to a TOML config file (classpath, log_level)")
	root.Flags().StringVar(&logLevel, "log-level", "", "overrides the config file's log_level")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := vmconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := vmlog.New(cfg.LogLevel)
	defer log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("reading %s: %v", path, err)
		os.Exit(vm.MalformedClassFile.ExitCode())
	}

	class, err := classfile.Decode(data)
	if err != nil {
		log.Errorf("decoding %s: %v", path, err)
		os.Exit(vm.MalformedClassFile.ExitCode())
	}

	className, ok := class.Name()
	if !ok {
		log.Errorf("%s: this_class does not resolve to a name", path)
		os.Exit(vm.MalformedClassFile.ExitCode())
	}

	rt := vm.New(cfg, log)
	log.Infof("starting %s", className)
	if err := rt.Start(className, class); err != nil {
		kind := vm.KindOf(err)
		log.Errorf("%v", err)
		os.Exit(kind.ExitCode())
	}
	return nil
}

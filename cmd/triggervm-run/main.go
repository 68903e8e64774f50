package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wudi/triggervm/config"
	"github.com/wudi/triggervm/trigger"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vm"
	"github.com/wudi/triggervm/vmlog"
)

func main() {
	app := &cli.Command{
		Name:   "triggervm-run",
		Usage:  "load a JSON trigger-VM program fixture and execute it",
		Flags:  runFlags,
		Action: runAction,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var runFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "program",
		Aliases:  []string{"p"},
		Usage:    "path to the JSON program fixture",
		Required: true,
	},
	&cli.BoolFlag{
		Name:  "debug",
		Usage: "log every opcode step, split, and merge to stderr",
	},
	&cli.StringFlag{
		Name:  "split",
		Usage: "context-split policy at function exit: allow|disallow",
		Value: "allow",
	},
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	prog, err := loadProgram(cmd.String("program"))
	if err != nil {
		return err
	}

	cfg := config.Default()
	if cmd.String("split") == "disallow" {
		cfg.Split = config.SplitDisallow
	}

	machine := vm.New(prog, cfg)
	if cmd.Bool("debug") {
		machine.Log = vmlog.New(slog.LevelDebug, os.Stderr)
	}

	if err := machine.Run(); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Printf("result: %s\n", value.Display(machine.Result()))
	printTriggers(machine.Triggers())
	return nil
}

func printTriggers(objs []trigger.Object) {
	if len(objs) == 0 {
		fmt.Println("triggers: (none)")
		return
	}
	fmt.Println("triggers:")
	for _, o := range objs {
		switch t := o.(type) {
		case trigger.Spawn:
			fmt.Printf("  [%d] spawn %s -> %s\n", t.Order, t.From, t.To)
		case trigger.ObjectTrigger:
			fmt.Printf("  [%d] object in group %s: %v\n", t.Order, t.Group, t.Props)
		}
	}
}

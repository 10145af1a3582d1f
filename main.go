package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/reportgrid/config"
)

const appName = "reportgrid"

// appEnv 保存一次运行共享的配置与日志，在 Before 中准备好。
type appEnv struct {
	cfg   *config.Config
	log   *zap.Logger
	start time.Time
}

type envKey struct{}

func envFromContext(ctx context.Context) *appEnv {
	if env, ok := ctx.Value(envKey{}).(*appEnv); ok {
		return env
	}
	panic("appEnv not found in context")
}

// initializeAppContext 在命令行解析之后、子命令执行之前准备配置与日志。
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := envFromContext(ctx)

	var err error
	configFile := cmd.String("config")
	if env.cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("无法加载配置: %w", err)
	}
	if cmd.Bool("debug") {
		env.cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if env.log, err = env.cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("无法准备日志: %w", err)
	}
	env.log.Debug("程序启动", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if configFile == "" {
		env.log.Debug("未指定配置文件，使用默认配置")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		env.log.Debug("程序结束", zap.Duration("elapsed", time.Since(env.start)), zap.Strings("parsed args", cmd.Args().Slice()))
		if er := env.log.Sync(); er != nil && !isIgnorableSyncError(er) {
			err = multierr.Append(err, fmt.Errorf("无法刷新日志: %w", er))
		}
	}
	return
}

var errWasHandled bool

// exitErrHandler 在 After 之前调用，借此把子命令的错误写入日志。
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		env.log.Error("程序因错误结束", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, &appEnv{start: time.Now()}), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            appName,
		Usage:           "lays out line markup reports as paginated grids of styled cells",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Renders report document(s) to PDF",
				OnUsageError: usageErrorHandler,
				Action:       runRender,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "render every document of the source"},
					&cli.StringFlag{Name: "layout-json", Usage: "also write pagination result with draw operations to `FILE`"},
				}, sourceFlags()...),
				ArgsUsage: "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    a report file, a directory (doclist.jsr or every *.jsr in natural order) or an http(s) URL

DESTINATION:
    output PDF file, or a directory when --all is given; if absent the file name
    is derived from the document .name and written to the current directory
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "layout",
				Usage:        "Writes pagination result of a report document as JSON",
				OnUsageError: usageErrorHandler,
				Action:       runLayout,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "ops", Usage: "include draw operations for every page"},
					&cli.BoolFlag{Name: "estimate", Usage: "measure text by character count instead of font metrics"},
				}, sourceFlags()...),
				ArgsUsage: "SOURCE [DESTINATION]",
			},
			{
				Name:         "list",
				Usage:        "Lists documents available from a source",
				OnUsageError: usageErrorHandler,
				Action:       runList,
				ArgsUsage:    "SOURCE",
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default configuration"},
				},
				ArgsUsage: "DESTINATION",
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "程序因错误结束: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

// sourceFlags 是读取文档的子命令共用的选项。
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "document", Usage: "use document `REF` from the source list instead of the first one"},
		&cli.StringFlag{Name: "data", Usage: "JSON `FILE` whose values replace ${path} placeholders in content lines"},
	}
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.log.Warn("目标过多，忽略多余参数", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	cfg := env.cfg
	state := "actual"
	if cmd.Bool("default") {
		cfg, state = config.Default(), "default"
	}
	data, err := config.Dump(cfg)
	if err != nil {
		return err
	}

	fname := cmd.Args().Get(0)
	if fname == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	env.log.Info("输出配置", zap.String("state", state), zap.String("file", fname))
	if err := os.WriteFile(fname, data, 0o644); err != nil {
		return fmt.Errorf("无法写入配置文件 %s: %w", fname, err)
	}
	return nil
}

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nyuappdev/dining-audit/internal/utils"
	"github.com/nyuappdev/dining-audit/pkg/fetch"
	"github.com/nyuappdev/dining-audit/pkg/recon"
	"github.com/nyuappdev/dining-audit/pkg/session"
	"github.com/nyuappdev/dining-audit/pkg/sources"
)

var cfgFile string

// rootCmd runs the whole tool: one reconciliation pass over the three
// dining sources, then the interactive session.
var rootCmd = &cobra.Command{
	Use:   "dining-audit",
	Short: "Cross-checks the NYU dining dataset across its three public sources.",
	Long: `dining-audit loads locations.json, locations.xml, and the rendered
dining page, cross-checks every location, verifies menus, and reports
per-location health through an interactive prompt. The run's error log
can be emailed on request or automatically after every run.`,
	RunE: runAudit,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "preference file (default is $HOME/.dining-audit.json)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

	rootCmd.Flags().Bool("dev", false, "developer mode: auto-rerun timer and SMTP startup test")
	rootCmd.Flags().Int("rerun-interval", 0, "auto-rerun interval in minutes (dev mode, 0 disables)")
	rootCmd.Flags().Int("pacing", 150, "delay in milliseconds between pipeline steps")
}

// initConfig reads ENV variables (DINING_SITE, SMTP_*) and inits logging.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("dining.site", "")
	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.username", "")
	viper.SetDefault("smtp.password", "")
	viper.SetDefault("smtp.from", "dining-audit@localhost")

	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unknown command: '%s'. See 'dining-audit --help'", args[0])
	}

	path := cfgFile
	if path == "" {
		var err error
		path, err = session.DefaultPath()
		if err != nil {
			return err
		}
	}
	store := session.NewFileStore(path)
	cfg, err := store.Load()
	if err != nil {
		return err
	}

	if dev, _ := cmd.Flags().GetBool("dev"); dev {
		cfg.DevMode = true
	}
	if mins, _ := cmd.Flags().GetInt("rerun-interval"); mins > 0 {
		cfg.RerunIntervalMinutes = mins
	}

	pacingMs, _ := cmd.Flags().GetInt("pacing")
	loader := &sources.Loader{
		Client:      fetch.NewClient(),
		SiteVariant: viper.GetString("dining.site"),
	}
	engine := &recon.Engine{
		Feed:   loader,
		Pacing: time.Duration(pacingMs) * time.Millisecond,
	}

	mailer := session.NewSMTPMailer(session.SMTPConfig{
		Host:     viper.GetString("smtp.host"),
		Port:     viper.GetInt("smtp.port"),
		Username: viper.GetString("smtp.username"),
		Password: viper.GetString("smtp.password"),
		From:     viper.GetString("smtp.from"),
	})
	if cfg.DevMode && mailer.Configured() {
		if err := mailer.TestConnection(); err != nil {
			utils.Log.Warnf("SMTP test failed: %v", err)
		} else {
			utils.Log.Info("SMTP test email sent")
		}
	}

	ctl := session.NewController(os.Stdout, cfg, store, mailer, engine.Run)

	// Stdin is read concurrently with runs; lines typed while a run was
	// in flight are discarded once it completes.
	lines := make(chan string, 64)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	ctl.Start()
	drainPending(lines)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			before := ctl.RunCount()
			ctl.HandleLine(line)
			if ctl.RunCount() != before {
				drainPending(lines)
			}
		case <-ctl.AutoRerunC():
			ctl.Rerun()
			drainPending(lines)
		}
	}
}

func drainPending(lines <-chan string) {
	for {
		select {
		case <-lines:
		default:
			return
		}
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Comcast/shapes/interpreters"
	"github.com/Comcast/shapes/service"
	"github.com/Comcast/shapes/storage"
	"github.com/Comcast/shapes/storage/bolt"
	"github.com/Comcast/shapes/tools"
	"github.com/Comcast/shapes/util"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServeConf is the service configuration.  Viper fills it from the
// config file, SHAPES_* environment variables, and flags.
type ServeConf struct {
	HTTP struct {
		Addr     string `mapstructure:"addr"`
		MaxConns int    `mapstructure:"maxConns"`
	} `mapstructure:"http"`

	// Storage is a bbolt filename.  Without one, cases are kept
	// in memory.
	Storage string `mapstructure:"storage"`

	CacheTTL time.Duration `mapstructure:"cacheTTL"`

	// Cases are case spec files to load at startup.
	Cases []string `mapstructure:"cases"`

	MQTT service.MQTTConf `mapstructure:"mqtt"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.maxConns", 256)
	v.SetDefault("cacheTTL", 10*time.Minute)
	v.SetDefault("mqtt.clientId", "shapes")
	v.SetDefault("mqtt.topic", "shapes")
	v.SetDefault("mqtt.keepAlive", 30*time.Second)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored cases over HTTP, WebSockets, and MQTT",
		Long: `Serve stored cases over HTTP, WebSockets, and (optionally) MQTT.

Configuration comes from the optional config file (YAML, JSON, or
TOML), SHAPES_* environment variables (SHAPES_HTTP_ADDR), and
flags.  MQTT is enabled when mqtt.broker is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadServeConf(configFile, cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, conf)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file")
	cmd.Flags().String("addr", ":8080", "HTTP address")
	cmd.Flags().String("storage", "", "bbolt filename (in-memory if empty)")
	cmd.Flags().String("broker", "", "MQTT broker URL (MQTT disabled if empty)")
	cmd.Flags().StringSlice("cases", nil, "case spec files to load")

	return cmd
}

func loadServeConf(filename string, cmd *cobra.Command) (*ServeConf, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("shapes")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	flags := map[string]string{
		"http.addr":   "addr",
		"storage":     "storage",
		"mqtt.broker": "broker",
		"cases":       "cases",
	}
	for key, flag := range flags {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		util.Logger.Info().Str("config", v.ConfigFileUsed()).Msg("read config")
	}

	var conf ServeConf
	if err := v.Unmarshal(&conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func serve(ctx context.Context, conf *ServeConf) error {
	var st storage.Storage = storage.NewMemStorage()
	if conf.Storage != "" {
		b, err := bolt.NewStorage(conf.Storage)
		if err != nil {
			return err
		}
		st = b
	}
	if err := st.Open(ctx); err != nil {
		return err
	}
	defer st.Close(context.Background())

	s := service.NewService(st, interpreters.Standard(), conf.CacheTTL)

	for _, filename := range conf.Cases {
		spec, err := tools.ReadCaseSpec(filename)
		if err != nil {
			return err
		}
		if err = s.Put(ctx, spec); err != nil {
			return err
		}
	}

	if conf.MQTT.Broker != "" {
		m := s.NewMQTT(ctx, &conf.MQTT)
		if err := m.Start(ctx); err != nil {
			return err
		}
		defer m.Stop(context.Background())
	}

	return s.HTTPServer(ctx, conf.HTTP.Addr, conf.HTTP.MaxConns)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/uber-go/tally"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitmark-inc/covid-monthly/consts"
	"github.com/bitmark-inc/covid-monthly/external/jhu"
	"github.com/bitmark-inc/covid-monthly/geo"
	"github.com/bitmark-inc/covid-monthly/schema"
	"github.com/bitmark-inc/covid-monthly/store"
	"github.com/bitmark-inc/covid-monthly/utils"
)

const (
	logPrefix = "cron"
)

var ErrUnknownFlag = errors.New("unknown flag")

var configFile string

var rootCmd = &cobra.Command{
	Use:           "crawler",
	Short:         "Monthly cumulative deaths per US county and state",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig(configFile)
		initLog()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch the daily time series and build the monthly wide table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

var decomposeCmd = &cobra.Command{
	Use:   "decompose KEY...",
	Short: "Print the county, state and country of combined keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decompose(cmd, args)
	},
}

func init() {
	viper.SetDefault("source.url", consts.JHUDeathsUSURL)
	viper.SetDefault("source.timeout", consts.DefaultSourceTimeout)
	viper.SetDefault("resolver.country", consts.DefaultCountry)
	viper.SetDefault("output.file", consts.DefaultOutputFile)
	viper.SetDefault("output.missing", consts.DefaultMissingMarker)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config.yaml", "[optional] path of configuration file")

	runCmd.Flags().String("source-file", "", "read the time series from a local csv instead of source.url")
	runCmd.Flags().StringP("output", "o", "", "path of the monthly wide csv")
	runCmd.Flags().Bool("strict", false, "abort when a combined key is malformed")
	runCmd.Flags().Bool("mongo", false, "store monthly aggregates into mongodb")
	bindFlag(runCmd.Flags(), "source.file", "source-file")
	bindFlag(runCmd.Flags(), "output.file", "output")
	bindFlag(runCmd.Flags(), "crawler.strict", "strict")
	bindFlag(runCmd.Flags(), "mongo.enabled", "mongo")

	rootCmd.AddCommand(runCmd, decomposeCmd)
}

// bindFlag - back a config key with a command line flag
func bindFlag(flags *pflag.FlagSet, key, name string) error {
	err := ErrUnknownFlag
	if flag := flags.Lookup(name); flag != nil {
		err = viper.BindPFlag(key, flag)
	}
	if nil != err {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"key":    key,
			"flag":   name,
			"error":  err,
		}).Error("bind flag")
		return err
	}
	return nil
}

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("covid")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func newSource() jhu.Source {
	if file := viper.GetString("source.file"); file != "" {
		return jhu.NewFileSource(file)
	}
	return jhu.NewURLSource(viper.GetString("source.url"), viper.GetDuration("source.timeout"))
}

func run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
	}); err != nil {
		log.Error(err)
	}
	defer sentry.Flush(5 * time.Second)

	var aliases utils.KeyAliases
	if file := viper.GetString("resolver.aliases"); file != "" {
		a, err := utils.LoadKeyAliases(file)
		if nil != err {
			return fmt.Errorf("load key aliases: %w", err)
		}
		aliases = a
	}

	var monthly store.MonthlyStore
	if viper.GetBool("mongo.enabled") {
		opts := options.Client().ApplyURI(viper.GetString("mongo.conn"))
		opts.SetMaxPoolSize(viper.GetUint64("mongo.pool"))
		mongoClient, err := mongo.NewClient(opts)
		if nil != err {
			return fmt.Errorf("create mongo client with error: %w", err)
		}

		if err := mongoClient.Connect(ctx); nil != err {
			return fmt.Errorf("connect mongo database with error: %w", err)
		}

		database := viper.GetString("mongo.database")
		if err := schema.NewMongoDBIndexerWithClient(mongoClient, database).IndexAll(); nil != err {
			return fmt.Errorf("index collections: %w", err)
		}

		mStore := store.NewMongoStore(mongoClient, database)
		defer mStore.Close()
		monthly = mStore
	}

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "crawler",
		Reporter: tally.NullStatsReporter,
	}, time.Second)
	defer closer.Close()

	c := newMonthlyCrawler(
		newSource(),
		geo.NewKeyResolver(viper.GetString("resolver.country")),
		aliases,
		store.NewWideCSVWriter(viper.GetString("output.missing")),
		viper.GetString("output.file"),
		monthly,
		scope,
	)
	c.strict = viper.GetBool("crawler.strict")
	c.retention = viper.GetInt("crawler.retention")

	return runJob(ctx, "monthly", c)
}

func decompose(cmd *cobra.Command, keys []string) error {
	resolver := geo.NewKeyResolver(viper.GetString("resolver.country"))
	out := cmd.OutOrStdout()

	var rejected []*geo.MalformedKeyError
	for _, key := range keys {
		record, err := resolver.Decompose(utils.CleanCombinedKey(key))
		if nil != err {
			var malformed *geo.MalformedKeyError
			if errors.As(err, &malformed) {
				rejected = append(rejected, malformed)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
			record.CombinedKey, record.Level, record.County, record.ProvinceState, record.CountryRegion)
	}

	if len(rejected) > 0 {
		return geo.NewMalformedKeyErrors(rejected)
	}
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); nil != err {
		log.WithField("prefix", logPrefix).Error(err)
		os.Exit(1)
	}
}

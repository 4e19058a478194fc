package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	globalConfig "github.com/vitrina-shop/media-proxy/core/config"
	domainCache "github.com/vitrina-shop/media-proxy/domains/cache"
	domainHealth "github.com/vitrina-shop/media-proxy/domains/health"
	domainMedia "github.com/vitrina-shop/media-proxy/domains/media"
	"github.com/vitrina-shop/media-proxy/infrastructure/upstream"
	"github.com/vitrina-shop/media-proxy/pkg/allowlist"
	"github.com/vitrina-shop/media-proxy/pkg/diskcache"
	"github.com/vitrina-shop/media-proxy/pkg/utils"
	"github.com/vitrina-shop/media-proxy/usecase"
)

var (
	// Infrastructure
	guard *allowlist.Guard
	store *diskcache.Store

	// Usecase
	budget        *usecase.CacheBudget
	mediaUsecase  domainMedia.IMediaUsecase
	cacheUsecase  domainCache.ICacheUsecase
	healthUsecase domainHealth.IHealthUsecase
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Short: "Storefront media transformation proxy",
	Long: `Fetches third-party product images on behalf of the storefront,
resizes and re-encodes them, and keeps the results in a byte-budgeted
on-disk cache.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	if _, err := globalConfig.LoadConfig(); err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize flags first, before any subcommands are added
	initFlags()

	// Then initialize other components
	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig applies overrides coming from viper (.env or process env)
func initEnvConfig() {
	if envPort := viper.GetString("app_port"); envPort != "" {
		globalConfig.Global.App.Port = envPort
	}
	if viper.IsSet("app_debug") {
		globalConfig.Global.App.Debug = viper.GetBool("app_debug")
	}
	if envBasicAuth := viper.GetString("app_basic_auth"); envBasicAuth != "" {
		globalConfig.Global.App.BasicAuth = strings.Split(envBasicAuth, ",")
	}
	if envBasePath := viper.GetString("app_base_path"); envBasePath != "" {
		globalConfig.Global.App.BasePath = envBasePath
	}
	if envDomains := viper.GetString("media_allowed_domains"); envDomains != "" {
		globalConfig.Global.Media.AllowedDomains = strings.Split(envDomains, ",")
	}
	if envMaxBytes := viper.GetInt64("media_cache_max_bytes"); envMaxBytes > 0 {
		globalConfig.Global.Cache.MaxBytes = envMaxBytes
	}
	if envRatio := viper.GetFloat64("media_cache_target_ratio"); envRatio > 0 {
		globalConfig.Global.Cache.TargetRatio = envRatio
	}
}

func initFlags() {
	// Application flags
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.Global.App.Port,
		"port", "p",
		globalConfig.Global.App.Port,
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.Global.App.Debug,
		"debug", "d",
		globalConfig.Global.App.Debug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&globalConfig.Global.App.BasicAuth,
		"basic-auth", "b",
		globalConfig.Global.App.BasicAuth,
		"basic auth credential for the admin API | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.Global.App.BasePath,
		"base-path", "",
		globalConfig.Global.App.BasePath,
		`base path for subpath deployment --base-path <string> | example: --base-path="/media"`,
	)

	// Media proxy flags
	rootCmd.PersistentFlags().StringSliceVarP(
		&globalConfig.Global.Media.AllowedDomains,
		"allowed-domains", "",
		globalConfig.Global.Media.AllowedDomains,
		`upstream CDN domains the proxy may fetch from --allowed-domains <list> | example: --allowed-domains="cjdropshipping.com,alicdn.com"`,
	)
	rootCmd.PersistentFlags().Int64VarP(
		&globalConfig.Global.Cache.MaxBytes,
		"cache-max-bytes", "",
		globalConfig.Global.Cache.MaxBytes,
		`on-disk media cache byte budget --cache-max-bytes <number> | example: --cache-max-bytes=536870912`,
	)
	rootCmd.PersistentFlags().Float64VarP(
		&globalConfig.Global.Cache.TargetRatio,
		"cache-target-ratio", "",
		globalConfig.Global.Cache.TargetRatio,
		`fraction of the budget eviction shrinks to --cache-target-ratio <0..1> | example: --cache-target-ratio=0.8`,
	)
}

func initApp() {
	if globalConfig.Global.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// preparing folders if not exist
	err := utils.CreateFolder(globalConfig.Global.Paths.Statics, globalConfig.Global.Paths.Cache)
	if err != nil {
		logrus.Errorln(err)
	}

	guard = allowlist.NewGuard(globalConfig.Global.Media.AllowedDomains)
	store = diskcache.NewStore(globalConfig.Global.Paths.Cache)
	budget = usecase.NewCacheBudget(diskcache.Budget{
		MaxBytes:    globalConfig.Global.Cache.MaxBytes,
		TargetRatio: globalConfig.Global.Cache.TargetRatio,
	})

	fetcher := upstream.NewFetcher(
		guard,
		globalConfig.Global.Media.UserAgent,
		globalConfig.Global.Media.Referer,
		globalConfig.Global.Media.FetchTimeout,
	)

	mediaUsecase = usecase.NewMediaService(guard, store, fetcher, budget, globalConfig.Global.Media.DefaultQuality)
	cacheUsecase = usecase.NewCacheService(store, budget)
	healthUsecase = usecase.NewHealthService(store)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

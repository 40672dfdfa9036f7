package config

const (
	defaultVideoDir            = "~/freestyle/inputs/videos"
	defaultMetadataDir         = "~/freestyle/inputs/metadata"
	defaultWorkDir             = "~/freestyle/inputs"
	defaultMastersDir          = "~/freestyle/outputs/masters"
	defaultAssetsDir           = "~/freestyle/public/assets"
	defaultManifestPath        = "~/freestyle/outputs/freestyle_tracks.json"
	defaultLogDir              = "~/.local/share/freestyle/logs"
	defaultCollection          = "detbom-freestyles"
	defaultKeyword             = "freestyle"
	defaultFallbackDescription = "{title} - An off-the-dome freestyle by Adi 55, captured live from the DETBOM (Detroit Executes, The Bombay Offensive Modules) sessions. Raw, uncut, and engineered for maximum lyrical impact."
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultStageTimeout        = 300
	defaultCoverTimeout        = 60
	defaultProbeTimeout        = 30
	defaultTargetLUFS          = -14.0
	defaultTargetLRA           = 11.0
	defaultTargetTP            = -1.0
	defaultCoverSize           = 800
	defaultCoverOffsetSeconds  = 1.0
	defaultMP3BitrateKbps      = 320
	defaultWorkers             = 1
	defaultSchedule            = "0 0 */6 * * *"
	defaultNotifyTimeout       = 10
	defaultPublishBucket       = "assets"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideoDir:     defaultVideoDir,
			MetadataDir:  defaultMetadataDir,
			WorkDir:      defaultWorkDir,
			MastersDir:   defaultMastersDir,
			AssetsDir:    defaultAssetsDir,
			ManifestPath: defaultManifestPath,
			LogDir:       defaultLogDir,
		},
		Catalog: Catalog{
			Collection:          defaultCollection,
			Keyword:             defaultKeyword,
			FallbackDescription: defaultFallbackDescription,
			DisambiguateSlugs:   true,
		},
		Mastering: Mastering{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			StageTimeoutSeconds: defaultStageTimeout,
			CoverTimeoutSeconds: defaultCoverTimeout,
			ProbeTimeoutSeconds: defaultProbeTimeout,
			TargetLUFS:          defaultTargetLUFS,
			TargetLRA:           defaultTargetLRA,
			TargetTP:            defaultTargetTP,
			CoverSize:           defaultCoverSize,
			CoverOffsetSeconds:  defaultCoverOffsetSeconds,
			MP3BitrateKbps:      defaultMP3BitrateKbps,
		},
		Workflow: Workflow{
			Workers:  defaultWorkers,
			Schedule: defaultSchedule,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Publish: Publish{
			Bucket: defaultPublishBucket,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

type PushConfig struct {
	FCM *FCMConfig `yaml:"fcm"`
}

type FCMConfig struct {
	Credentials string `yaml:"credentials_file"`
}

func loadPushConfig() *PushConfig {
	return &PushConfig{
		FCM: &FCMConfig{
			Credentials: getEnv("FCM_CREDENTIALS_FILE", ""),
		},
	}
}

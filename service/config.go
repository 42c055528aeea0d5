package service

import "os"

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	DBPath      string
	SiteTitle   string

	Shopify struct {
		StoreID         string
		StorefrontToken string
		AdminToken      string
	}

	Recharge struct {
		APIToken string
	}

	Sanity struct {
		ProjectID string
		Dataset   string
	}

	Session struct {
		Secret string
	}

	Analytics struct {
		CollectorURL string
		ContainerID  string
		Currency     string
	}
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		DBPath:      getEnv("DB_PATH", "./db/storefront.db"),
		SiteTitle:   getEnv("SITE_TITLE", "Greenline Goods"),
	}

	// Shopify
	config.Shopify.StoreID = getEnv("SHOPIFY_STORE_ID", "")
	config.Shopify.StorefrontToken = getEnv("SHOPIFY_STOREFRONT_TOKEN", "")
	config.Shopify.AdminToken = getEnv("SHOPIFY_ADMIN_TOKEN", "")

	// Recharge
	config.Recharge.APIToken = getEnv("RECHARGE_API_TOKEN", "")

	// Sanity
	config.Sanity.ProjectID = getEnv("SANITY_PROJECT_ID", "")
	config.Sanity.Dataset = getEnv("SANITY_DATASET", "production")

	// Session
	config.Session.Secret = getEnv("SESSION_SECRET", "development-secret")

	// Analytics
	config.Analytics.CollectorURL = getEnv("ANALYTICS_COLLECTOR_URL", "")
	config.Analytics.ContainerID = getEnv("GTM_CONTAINER_ID", "")
	config.Analytics.Currency = getEnv("SHOP_CURRENCY", "USD")

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

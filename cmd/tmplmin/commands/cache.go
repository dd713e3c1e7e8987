package commands

import (
	"fmt"

	"github.com/livefir/tmplmin/cmd/tmplmin/internal/config"
	"github.com/livefir/tmplmin/internal/cache"
)

// CacheCmd manages the minify result cache.
func CacheCmd(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("command required: status, purge")
	}

	switch args[0] {
	case "status":
		return cacheStatus()
	case "purge":
		return cachePurge()
	default:
		return fmt.Errorf("unknown cache command: %s (valid: status, purge)", args[0])
	}
}

func openCache() (*cache.Cache, string, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, "", err
	}

	path := cfg.CachePath
	if path == "" {
		path, err = cache.DefaultPath()
		if err != nil {
			return nil, "", err
		}
	}

	store, err := cache.New(path)
	if err != nil {
		return nil, "", err
	}
	return store, path, nil
}

func cacheStatus() error {
	store, path, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, saved, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Cache: %s\n", path)
	fmt.Printf("Entries: %d\n", entries)
	fmt.Printf("Bytes saved: %d\n", saved)
	return nil
}

func cachePurge() error {
	store, _, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Purge(); err != nil {
		return err
	}

	fmt.Println("✅ Cache purged!")
	return nil
}

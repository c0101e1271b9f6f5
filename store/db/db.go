package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/remindme/internal/profile"
	"github.com/hrygo/remindme/store"
	"github.com/hrygo/remindme/store/db/file"
	"github.com/hrygo/remindme/store/db/postgres"
	"github.com/hrygo/remindme/store/db/sqlite"
)

// NewDriver creates a new persistence driver based on profile.
func NewDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "file":
		driver, err = file.NewDB(profile)
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown driver %q: only 'file', 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create driver")
	}
	return driver, nil
}

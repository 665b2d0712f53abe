// Package mongo opens MongoDB connections from environment configuration and
// exposes a health check suitable for the server's readiness probe.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo

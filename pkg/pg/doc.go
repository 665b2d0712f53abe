// Package pg opens PostgreSQL pools with pgx, applies embedded goose
// migrations and classifies constraint errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, migrations.FS, ".", cfg, log); err != nil {
//	    return err
//	}
package pg

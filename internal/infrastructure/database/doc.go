// Package database opens the SQLite file that stores door history and the
// command audit trail, and applies the schema migrations.
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations only add: new columns are nullable or carry a default, and
// every .up.sql has a matching .down.sql.
package database

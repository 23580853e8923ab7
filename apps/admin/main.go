package main

import (
	"database/sql"
	"log"
	"os"

	dig_container "github.com/roshna21/DevOps-project/apps/api/di/dig"
	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/student"
	"github.com/roshna21/DevOps-project/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	code := 0
	c := dig_container.New()
	errAndDie(c.Invoke(func(
		conf *core.Config,
		students *student.Service,
		accounts *account.Service,
		closers dig_container.ClosersParam,
	) {
		defer func() {
			for _, c := range closers.Closers {
				if err := c.Close(); err != nil {
					logger.Printf("closing: %v", err)
				}
			}
		}()

		cli := commandLine{
			students: students,
			accounts: accounts,
			openDB: func() (*sql.DB, error) {
				db, err := database.Open(conf)
				if err != nil {
					return nil, err
				}
				return db.DB, nil
			},
			out: os.Stdout,
		}
		if err := cli.run(os.Args); err != nil {
			if err != errHelp {
				logger.Printf("\nerror: %s\n", err)
			}
			code = 1
		}
	}))
	os.Exit(code)
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

package main

import (
	"log"
	"os"

	"github.com/trezcool/matibabu/core"
	"github.com/trezcool/matibabu/core/report"
	emailsvc "github.com/trezcool/matibabu/services/email"
	logsvc "github.com/trezcool/matibabu/services/logger"
	"github.com/trezcool/matibabu/services/renderer"
	"github.com/trezcool/matibabu/storage/database"
	sqlxrepos "github.com/trezcool/matibabu/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(false) // ops commands never report to rollbar

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	engine := renderer.NewChromeEngine(conf, appLogger)
	reportSvc := report.NewService(
		sqlxrepos.NewReportRepository(db), engine, emailsvc.NewConsoleService(conf), appLogger, conf,
	)

	// start CLI
	cli := commandLine{
		db:        db,
		reportSvc: reportSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

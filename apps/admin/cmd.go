package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	students *student.Service
	accounts *account.Service
	openDB   func() (*sql.DB, error)
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command against the record store")
	fmt.Fprintln(cli.out, "  mapparent -usn USN -mobile MOBILE [-name NAME] [-student NAME] [-email EMAIL] - map a parent to a student")
	fmt.Fprintln(cli.out, "  importmarks -file FILE.xlsx [-sheet SHEET] - import internal marks from a spreadsheet")
	fmt.Fprintln(cli.out, "  hashpassword - hash the admin password to put in the configuration")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	mapParentCmd := flag.NewFlagSet("mapparent", flag.ContinueOnError)
	mapParentCmd.SetOutput(cli.out)
	mapParentUSN := mapParentCmd.String("usn", "", "The student's USN. The student is created when absent.")
	mapParentMobile := mapParentCmd.String("mobile", "", "The parent's mobile number.")
	mapParentName := mapParentCmd.String("name", "", "The parent's name.")
	mapParentStudent := mapParentCmd.String("student", "", "The student's name, used when the student is created.")
	mapParentEmail := mapParentCmd.String("email", "", "The parent's email, notifications are mirrored to it.")

	importMarksCmd := flag.NewFlagSet("importmarks", flag.ContinueOnError)
	importMarksCmd.SetOutput(cli.out)
	importMarksFile := importMarksCmd.String("file", "", "The .xlsx file: USN, Subject, Internal 1, Internal 2, Internal 3.")
	importMarksSheet := importMarksCmd.String("sheet", "", "The sheet to read. Defaults to the first one.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "mapparent":
		if err := mapParentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mapParentUSN == "" || *mapParentMobile == "" {
			mapParentCmd.Usage()
			return errHelp
		}
		return cli.mapParent(account.ParentMapping{
			USN:         *mapParentUSN,
			Mobile:      *mapParentMobile,
			ParentName:  *mapParentName,
			StudentName: *mapParentStudent,
			Email:       *mapParentEmail,
		})

	case "importmarks":
		if err := importMarksCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importMarksFile == "" {
			importMarksCmd.Usage()
			return errHelp
		}
		return cli.importMarks(*importMarksFile, *importMarksSheet)

	case "hashpassword":
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

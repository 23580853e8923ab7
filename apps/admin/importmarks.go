package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/roshna21/DevOps-project/core/student"
)

// importMarks reads rows of USN, Subject, Internal 1, Internal 2, Internal 3.
// The first row is a header. Blank score cells are left untouched.
func (cli *commandLine) importMarks(path, sheet string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return errors.Wrap(err, "opening spreadsheet")
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return errors.Wrapf(err, "reading sheet %q", sheet)
	}

	ctx := context.Background()
	imported := 0
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		usn, subject := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if usn == "" {
			continue
		}

		for internal := 1; internal <= 3; internal++ {
			col := internal + 1
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			marks, err := strconv.Atoi(strings.TrimSpace(row[col]))
			if err != nil {
				return errors.Errorf("row %d: internal %d: %q is not a number", i+1, internal, row[col])
			}
			update := student.MarkUpdate{Subject: subject, Internal: internal, Marks: marks}
			if err = cli.students.UpdateMark(ctx, usn, update); err != nil {
				return errors.Wrapf(err, "row %d", i+1)
			}
			imported++
		}
	}

	fmt.Fprintf(cli.out, "imported %d marks\n", imported)
	return nil
}

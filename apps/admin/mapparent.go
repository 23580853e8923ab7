package main

import (
	"context"
	"fmt"

	"github.com/roshna21/DevOps-project/core/account"
)

func (cli *commandLine) mapParent(data account.ParentMapping) error {
	ctx := context.Background()
	p, err := cli.accounts.MapParent(ctx, data)
	if err != nil {
		return err
	}

	parents, err := cli.accounts.ParentsOfStudent(ctx, p.StudentUSN)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is now mapped to:\n", p.StudentUSN)
	for _, p := range parents {
		fmt.Fprintf(cli.out, "  %s\t%s\t%s\n", p.Name, p.Mobile, p.Email)
	}
	return nil
}

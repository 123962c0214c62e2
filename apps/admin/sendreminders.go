package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) sendReminders() error {
	n, err := cli.reminders.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.output(), "%d reminder(s) sent\n", n)
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/braxlabs/facet/internal/fallback"
	"github.com/braxlabs/facet/internal/ghl"
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Conversation operations",
}

var messagesLimit int

var messagesListCmd = &cobra.Command{
	Use:   "list <contact-id>",
	Short: "List recent conversation messages for a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := facetApp.CRM.ListMessages(cmd.Context(), args[0], messagesLimit)
		return emit(fallback.OpMessages, msgs, err)
	},
}

var (
	messageBody    string
	messageChannel string
)

var messagesSendCmd = &cobra.Command{
	Use:   "send <conversation-id>",
	Short: "Send a message to a conversation thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := facetApp.CRM.SendMessage(cmd.Context(), args[0], messageBody, messageChannel)
		return emit(fallback.OpMessages, msg, err)
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Payment transaction operations",
}

var txQuery ghl.TransactionQuery

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payment transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		txs, err := facetApp.CRM.ListTransactions(cmd.Context(), txQuery)
		return emit(fallback.OpTransactions, txs, err)
	},
}

func init() {
	messagesListCmd.Flags().IntVar(&messagesLimit, "limit", 20, "max messages to return")

	messagesSendCmd.Flags().StringVar(&messageBody, "body", "", "message text")
	messagesSendCmd.Flags().StringVar(&messageChannel, "channel", "SMS", "delivery channel (SMS, EMAIL, ...)")

	transactionsListCmd.Flags().IntVar(&txQuery.Limit, "limit", 20, "max transactions to return")
	transactionsListCmd.Flags().IntVar(&txQuery.Offset, "offset", 0, "pagination offset")
	transactionsListCmd.Flags().StringVar(&txQuery.StartDate, "start", "", "start date (YYYY-MM-DD)")
	transactionsListCmd.Flags().StringVar(&txQuery.EndDate, "end", "", "end date (YYYY-MM-DD)")

	messagesCmd.AddCommand(messagesListCmd, messagesSendCmd)
	transactionsCmd.AddCommand(transactionsListCmd)
	rootCmd.AddCommand(messagesCmd, transactionsCmd)
}

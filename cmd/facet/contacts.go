package main

import (
	"github.com/spf13/cobra"

	"github.com/braxlabs/facet/internal/fallback"
	"github.com/braxlabs/facet/internal/ghl"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "CRM contact operations",
}

var (
	contactsLimit  int
	contactsOffset int
	contactsQuery  string
)

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List CRM contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		contacts, err := facetApp.CRM.GetContacts(cmd.Context(), ghl.ContactQuery{
			Limit:  contactsLimit,
			Offset: contactsOffset,
			Query:  contactsQuery,
		})
		return emit(fallback.OpContacts, contacts, err)
	},
}

var contactsGetCmd = &cobra.Command{
	Use:   "get <contact-id>",
	Short: "Fetch one contact by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contact, err := facetApp.CRM.GetContact(cmd.Context(), args[0])
		return emit(fallback.OpContacts, contact, err)
	},
}

var contactFields ghl.ContactFields

var contactsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contact (email or phone required)",
	RunE: func(cmd *cobra.Command, args []string) error {
		contact, err := facetApp.CRM.CreateContact(cmd.Context(), contactFields)
		return emit(fallback.OpContacts, contact, err)
	},
}

var contactsUpsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Create or update a contact matched by email/phone",
	RunE: func(cmd *cobra.Command, args []string) error {
		contact, err := facetApp.CRM.UpsertContact(cmd.Context(), contactFields)
		return emit(fallback.OpContacts, contact, err)
	},
}

var (
	tagList   []string
	tagRemove bool
)

var contactsTagCmd = &cobra.Command{
	Use:   "tag <contact-id>",
	Short: "Add or remove tags on a contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if tagRemove {
			err = facetApp.CRM.RemoveTags(cmd.Context(), args[0], tagList)
		} else {
			err = facetApp.CRM.AddTags(cmd.Context(), args[0], tagList)
		}
		return emit(fallback.OpContacts, map[string]any{"contactId": args[0], "tags": tagList}, err)
	},
}

func init() {
	contactsListCmd.Flags().IntVar(&contactsLimit, "limit", 20, "max contacts to return")
	contactsListCmd.Flags().IntVar(&contactsOffset, "offset", 0, "pagination offset")
	contactsListCmd.Flags().StringVar(&contactsQuery, "query", "", "free-text filter")

	for _, c := range []*cobra.Command{contactsCreateCmd, contactsUpsertCmd} {
		c.Flags().StringVar(&contactFields.FirstName, "first", "", "first name")
		c.Flags().StringVar(&contactFields.LastName, "last", "", "last name")
		c.Flags().StringVar(&contactFields.Email, "email", "", "email address")
		c.Flags().StringVar(&contactFields.Phone, "phone", "", "phone number")
		c.Flags().StringSliceVar(&contactFields.Tags, "tags", nil, "tags to attach")
	}

	contactsTagCmd.Flags().StringSliceVar(&tagList, "tags", nil, "tags to add or remove")
	contactsTagCmd.Flags().BoolVar(&tagRemove, "remove", false, "remove instead of add")

	contactsCmd.AddCommand(contactsListCmd, contactsGetCmd, contactsCreateCmd, contactsUpsertCmd, contactsTagCmd)
	rootCmd.AddCommand(contactsCmd)
}

package approval

// EntityType identifies the business document class an approval item represents
type EntityType string

const (
	EntityPurchaseOrder       EntityType = "PURCHASE_ORDER"
	EntityPurchaseRequisition EntityType = "PURCHASE_REQUISITION"
	EntityVendor              EntityType = "VENDOR"
	EntityVendorOnboarding    EntityType = "VENDOR_ONBOARDING"
	EntityTransfer            EntityType = "TRANSFER"
	EntityJournalEntry        EntityType = "JOURNAL_ENTRY"
	EntityGRN                 EntityType = "GRN"
	EntityInvoice             EntityType = "INVOICE"
	EntityExpense             EntityType = "EXPENSE"
	EntityCreditNote          EntityType = "CREDIT_NOTE"
)

var validEntityTypes = map[EntityType]bool{
	EntityPurchaseOrder:       true,
	EntityPurchaseRequisition: true,
	EntityVendor:              true,
	EntityVendorOnboarding:    true,
	EntityTransfer:            true,
	EntityJournalEntry:        true,
	EntityGRN:                 true,
	EntityInvoice:             true,
	EntityExpense:             true,
	EntityCreditNote:          true,
}

// entityTypeLabels is the closed display mapping for each entity type
var entityTypeLabels = map[EntityType]string{
	EntityPurchaseOrder:       "Purchase Order",
	EntityPurchaseRequisition: "Purchase Requisition",
	EntityVendor:              "Vendor",
	EntityVendorOnboarding:    "Vendor Onboarding",
	EntityTransfer:            "Stock Transfer",
	EntityJournalEntry:        "Journal Entry",
	EntityGRN:                 "Goods Receipt Note",
	EntityInvoice:             "Invoice",
	EntityExpense:             "Expense",
	EntityCreditNote:          "Credit Note",
}

// IsValid returns true if the entity type is a known document class
func (e EntityType) IsValid() bool {
	return validEntityTypes[e]
}

// String returns the string representation of the entity type
func (e EntityType) String() string {
	return string(e)
}

// Label returns the human-readable name of the entity type
func (e EntityType) Label() string {
	if label, ok := entityTypeLabels[e]; ok {
		return label
	}
	return string(e)
}

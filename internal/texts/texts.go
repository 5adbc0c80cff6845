package texts

import "fmt"

type TextKey = string

const (
	// Common
	Welcome            TextKey = "welcome"
	WelcomeMaster      TextKey = "welcome_master"
	WelcomeAdmin       TextKey = "welcome_admin"
	WelcomeIntro       TextKey = "welcome_intro"
	WelcomeExample     TextKey = "welcome_example"
	HelpHeader         TextKey = "help_header"
	HelpLimits         TextKey = "help_limits"
	UserCommands       TextKey = "user_commands"
	AdminCommands      TextKey = "admin_commands"
	MasterCommands     TextKey = "master_commands"
	PaymentProcess     TextKey = "payment_process"
	UnknownMessage     TextKey = "unknown_message"
	Retry              TextKey = "retry"
	AccessDenied       TextKey = "access_denied"
	MasterAccessDenied TextKey = "master_access_denied"
	AccessCheckFailed  TextKey = "access_check_failed"
	RateLimited        TextKey = "rate_limited"
	FlowReplaced       TextKey = "flow_replaced"

	// Payment
	PayUsage            TextKey = "pay_usage"
	InvalidAmount       TextKey = "invalid_amount"
	UnsupportedCurrency TextKey = "unsupported_currency"
	DirectPayment       TextKey = "direct_payment"
	BuyUsage            TextKey = "buy_usage"
	ProductNotFound     TextKey = "product_not_found"
	ProductSelected     TextKey = "product_selected"
	BuyFailed           TextKey = "buy_failed"
	AddressIntro        TextKey = "address_intro"
	AddressAccepted     TextKey = "address_accepted"  // format: label, value
	AddressFieldError   TextKey = "address_field_err" // format: error, prompt
	AddressInvalidStep  TextKey = "address_invalid_step"
	PaymentCreated      TextKey = "payment_created"
	PaymentAddress      TextKey = "payment_address"
	PaymentLink         TextKey = "payment_link"
	PaymentFailed       TextKey = "payment_failed"
	CheckoutButton      TextKey = "checkout_button"
	CheckoutQRCaption   TextKey = "checkout_qr_caption"

	// Address steps
	StepCountry       TextKey = "step_country"
	StepState         TextKey = "step_state"
	StepCity          TextKey = "step_city"
	StepAddress       TextKey = "step_address"
	StepZip           TextKey = "step_zip"
	StepPhone         TextKey = "step_phone"
	AskCountry        TextKey = "ask_country"
	AskState          TextKey = "ask_state"
	AskCity           TextKey = "ask_city"
	AskAddress        TextKey = "ask_address"
	AskZip            TextKey = "ask_zip"
	AskPhone          TextKey = "ask_phone"
	LabelCountry      TextKey = "label_country"
	LabelState        TextKey = "label_state"
	LabelCity         TextKey = "label_city"
	LabelAddress      TextKey = "label_address"
	LabelZip          TextKey = "label_zip"
	LabelPhone        TextKey = "label_phone"
	FieldCountry      TextKey = "field_country"
	FieldState        TextKey = "field_state"
	FieldCity         TextKey = "field_city"
	FieldStreet       TextKey = "field_street"
	AddressStepHeader TextKey = "address_step_header" // format: step, title, prompt

	// Status
	NoSessions    TextKey = "no_sessions"
	PaymentStatus TextKey = "payment_status"
	StatusProduct TextKey = "status_product"
	StatusPending TextKey = "status_pending"
	RefreshHint   TextKey = "refresh_hint"
	StatusFailed  TextKey = "status_failed"

	// Cancel
	AddressCancelled      TextKey = "address_cancelled"
	CreationCancelled     TextKey = "creation_cancelled"
	ModificationCancelled TextKey = "modification_cancelled"
	NothingToCancel       TextKey = "nothing_to_cancel"

	// Products
	ProductsEmpty       TextKey = "products_empty"
	ProductsHeader      TextKey = "products_header"
	ProductItem         TextKey = "product_item"
	ProductsFooter      TextKey = "products_footer"
	ProductsFailed      TextKey = "products_failed"
	BuyButton           TextKey = "buy_button"
	AdminProductsEmpty  TextKey = "admin_products_empty"
	AdminProductsHeader TextKey = "admin_products_header"
	AdminProductItem    TextKey = "admin_product_item"
	ProductInactive     TextKey = "product_inactive"

	// Product creation
	AddProductStart      TextKey = "add_product_start"
	ProductNameError     TextKey = "product_name_error"
	ProductDescError     TextKey = "product_desc_error"
	ProductPriceError    TextKey = "product_price_error"
	ProductCurrencyError TextKey = "product_currency_error"
	ProductNameSaved     TextKey = "product_name_saved"
	ProductDescSaved     TextKey = "product_desc_saved"
	ProductPriceSaved    TextKey = "product_price_saved"
	ProductCreated       TextKey = "product_created"
	ProductCreateFailed  TextKey = "product_create_failed"
	ProductInvalidStep   TextKey = "product_invalid_step"

	// Product deletion
	DeleteProductUsage    TextKey = "delete_product_usage"
	DeleteProductNotFound TextKey = "delete_product_not_found"
	ProductDeleted        TextKey = "product_deleted"
	ProductDeleteFailed   TextKey = "product_delete_failed"

	// Product modification
	ModifyUsage        TextKey = "modify_usage"
	ModifyForbidden    TextKey = "modify_forbidden"
	ModifyStart        TextKey = "modify_start"
	ModifyMenu         TextKey = "modify_menu"
	ModifyNext         TextKey = "modify_next"
	FieldSelected      TextKey = "field_selected"
	InvalidFieldChoice TextKey = "invalid_field_choice"
	AskNewName         TextKey = "ask_new_name"
	AskNewDescription  TextKey = "ask_new_description"
	AskNewPrice        TextKey = "ask_new_price"
	AskNewCurrency     TextKey = "ask_new_currency"
	NewValueSaved      TextKey = "new_value_saved"
	NoModifications    TextKey = "no_modifications"
	ProductModified    TextKey = "product_modified"
	ModifyFailed       TextKey = "modify_failed"
	ModifyInvalidStep  TextKey = "modify_invalid_step"

	// Admins
	AddAdminUsage      TextKey = "add_admin_usage"
	RemoveAdminUsage   TextKey = "remove_admin_usage"
	InvalidUserID      TextKey = "invalid_user_id"
	AdminAdded         TextKey = "admin_added"
	AdminExists        TextKey = "admin_exists"
	AdminAddFailed     TextKey = "admin_add_failed"
	AdminRemoved       TextKey = "admin_removed"
	CannotRemoveMaster TextKey = "cannot_remove_master"
	NotAnAdmin         TextKey = "not_an_admin"
	AdminRemoveFailed  TextKey = "admin_remove_failed"
	AdminListHeader    TextKey = "admin_list_header"
	AdminListMaster    TextKey = "admin_list_master"
	AdminListItem      TextKey = "admin_list_item"
	AdminListFailed    TextKey = "admin_list_failed"
	AdminStatus        TextKey = "admin_status"
	AdminStatusMaster  TextKey = "admin_status_master"
	AdminStatusAdmin   TextKey = "admin_status_admin"
	AdminStatusNone    TextKey = "admin_status_none"
	CheckAdmin         TextKey = "check_admin"
	CheckAdminYes      TextKey = "check_admin_yes"
	CheckAdminNo       TextKey = "check_admin_no"
	Yes                TextKey = "yes"
	No                 TextKey = "no"

	// Payment status notify
	NotifyCompleted TextKey = "notify_completed"
	NotifyCancelled TextKey = "notify_cancelled"
	NotifyFailed    TextKey = "notify_failed"
)

var MapText = map[TextKey]string{
	Welcome:        "🤖 Welcome to the Payment Bot!\n\n",
	WelcomeMaster:  "👑 Master Admin Access\n\n",
	WelcomeAdmin:   "🔧 Admin Access\n\n",
	WelcomeIntro:   "I can help you process payments securely.\n\nAvailable commands:\n",
	WelcomeExample: "Example: /buy <product_id> or /pay 100 USD\n\n",
	HelpHeader:     "📖 Payment Bot Help\n\nUser Commands:\n",
	HelpLimits: "Supported currencies: USD, EUR, GBP, INR\n" +
		"Amount range: 1 to 1,000,000\n\n" +
		"Examples:\n" +
		"• /buy <product_id>\n" +
		"• /pay 50 USD\n\n",
	UserCommands: "• /start - Welcome message\n" +
		"• /help - Show help message\n" +
		"• /products - View available products\n" +
		"• /buy <product_id> - Buy a product\n" +
		"• /pay <amount> <currency> - Direct payment\n" +
		"• /status - Check payment status\n" +
		"• /refresh - Refresh payment status\n" +
		"• /cancel - Cancel current process\n\n",
	AdminCommands: "Admin Commands:\n" +
		"• /addproduct - Add new product\n" +
		"• /deleteproduct <name> - Delete product\n" +
		"• /listproducts - List all products\n" +
		"• /modifyproduct <product_id> - Modify product\n\n",
	MasterCommands: "Master Admin Commands:\n" +
		"• /addadmin <user_id> - Add admin\n" +
		"• /removeadmin <user_id> - Remove admin\n" +
		"• /listadmins - List all admins\n\n",
	PaymentProcess: "💡 Payment Process:\n" +
		"1. Choose product or direct payment\n" +
		"2. Provide billing address (6 steps)\n" +
		"3. Complete payment on checkout page",
	UnknownMessage:     "❓ I didn't understand that message.\n\nUse /help to see available commands or /start to begin.",
	Retry:              "❌ An error occurred. Please try again later.\nIf the problem persists, contact support.",
	AccessDenied:       "❌ Access denied. Admin privileges required.",
	MasterAccessDenied: "❌ Access denied. Master admin privileges required.",
	AccessCheckFailed:  "❌ Error checking admin privileges. Please try again later.",
	RateLimited:        "⏳ Too many payment attempts. Please wait a few minutes and try again.",
	FlowReplaced:       "ℹ️ Your previous unfinished process was discarded.\n\n",

	PayUsage:            "❌ Invalid format. Use: /pay <amount> <currency>\nExample: /pay 100 USD",
	InvalidAmount:       "❌ Invalid amount. Please enter a number between 1 and 1,000,000.",
	UnsupportedCurrency: "❌ Unsupported currency. Supported: USD, EUR, GBP, INR",
	DirectPayment:       "💳 Direct Payment: %s\n\n",
	BuyUsage:            "❌ Invalid format. Use: /buy <product_id>\nUse /products to see available products.",
	ProductNotFound:     "❌ Product not found. Use /products to see available products.",
	ProductSelected: "🛒 Product Selected:\n\n" +
		"📝 Name: %s\n" +
		"💰 Price: %s\n" +
		"📄 Description: %s\n\n",
	BuyFailed:          "❌ Failed to process purchase. Please try again later.",
	AddressIntro:       "📍 Please provide your billing address:\n\n",
	AddressAccepted:    "✅ %s: %s\n\n",
	AddressFieldError:  "❌ %s\n\n%s",
	AddressInvalidStep: "❌ Invalid step. Please start over with /pay or /buy command.",
	PaymentCreated: "💳 Payment Session Created!\n\n" +
		"Amount: %s\n" +
		"Order: %s\n\n",
	PaymentAddress: "📍 Billing Address:\n" +
		"%s, %s\n" +
		"%s %s, %s\n" +
		"📞 %s\n\n",
	PaymentLink: "💳 Payment Methods Available:\n" +
		"• Credit/Debit Cards (All devices)\n" +
		"• Apple Pay (iPhone/iPad/Mac only)\n\n" +
		"🔗 Click the link below to complete your payment:\n" +
		"%s\n\n" +
		"Use /status to check your payment status.",
	PaymentFailed: "❌ Failed to create payment session. Please try again later.\n" +
		"If the problem persists, contact support.\n\n" +
		"Start over with: /pay <amount> <currency> or /buy <product_id>",
	CheckoutButton:    "💳 Pay now",
	CheckoutQRCaption: "📱 Scan to open the checkout page",

	StepCountry:       "Country",
	StepState:         "State/Province",
	StepCity:          "City",
	StepAddress:       "Street Address",
	StepZip:           "ZIP/Postal Code",
	StepPhone:         "Phone Number",
	AskCountry:        "Please enter your country (e.g., US, UK, CA):",
	AskState:          "Please enter your state or province:",
	AskCity:           "Please enter your city:",
	AskAddress:        "Please enter your street address:",
	AskZip:            "Please enter your ZIP or postal code:",
	AskPhone:          "Please enter your phone number (e.g., +1234567890):",
	LabelCountry:      "Country",
	LabelState:        "State",
	LabelCity:         "City",
	LabelAddress:      "Address",
	LabelZip:          "ZIP",
	LabelPhone:        "Phone",
	FieldCountry:      "Country",
	FieldState:        "State/Province",
	FieldCity:         "City",
	FieldStreet:       "Street address",
	AddressStepHeader: "Step %d/%d: %s\n%s",

	NoSessions: "📋 No active payment sessions found.\n" +
		"Use /pay <amount> <currency> or /buy <product_id> to create a new payment.",
	PaymentStatus: "📋 Payment Status\n\n" +
		"Order: %s\n" +
		"Amount: %s\n" +
		"Status: %s %s\n" +
		"Created: %s\n\n",
	StatusProduct: "Product: %s\n\n",
	StatusPending: "Payment is still pending. Complete it using the link sent earlier.",
	RefreshHint: "\n\n🔄 Status Updates:\n" +
		"• Status updates automatically via webhooks\n" +
		"• If payment completed but shows pending, webhook may be delayed\n" +
		"• You can check payment status directly on the checkout page\n\n" +
		"💡 Note: Payment status should update within a few minutes of completion.",
	StatusFailed: "❌ Failed to check status. Please try again later.",

	AddressCancelled: "❌ Address collection cancelled.\n\n" +
		"Use /pay <amount> <currency> or /buy <product_id> to start a new payment.",
	CreationCancelled:     "❌ Product creation cancelled.",
	ModificationCancelled: "❌ Product modification cancelled.",
	NothingToCancel: "ℹ️ No active processes to cancel.\n\n" +
		"Use /pay <amount> <currency> or /buy <product_id> to start a payment.",

	ProductsEmpty:  "📦 No products available at the moment.\n\nContact an admin to add products.",
	ProductsHeader: "📦 Available Products:\n\n",
	ProductItem: "🆔 ID: %s\n" +
		"📝 Name: %s\n" +
		"💰 Price: %s\n" +
		"📄 Description: %s\n\n",
	ProductsFooter:      "💡 To buy a product, use: /buy <product_id>\nor press the button below.",
	ProductsFailed:      "❌ Failed to load products. Please try again later.",
	BuyButton:           "🛒 Buy %s",
	AdminProductsEmpty:  "📦 No products found.",
	AdminProductsHeader: "📦 All Products (Admin View):\n\n",
	AdminProductItem: "🆔 ID: %s\n" +
		"📝 Name: %s%s\n" +
		"💰 Price: %s\n" +
		"📄 Description: %s\n" +
		"👤 Created By: %d\n" +
		"📅 Created: %s\n\n",
	ProductInactive: " (deleted)",

	AddProductStart:      "🔧 Add New Product\n\nStep 1/4: Product Name\nPlease enter the product name:",
	ProductNameError:     "❌ %s\n\nPlease enter the product name:",
	ProductDescError:     "❌ %s\n\nPlease enter the product description:",
	ProductPriceError:    "❌ Invalid price. Please enter a valid number between 1 and 1,000,000.\n\nPlease enter the product price:",
	ProductCurrencyError: "❌ Unsupported currency. Supported: USD, EUR, GBP, INR\n\nPlease enter the currency:",
	ProductNameSaved:     "✅ Name: %s\n\nStep 2/4: Description\nPlease enter the product description:",
	ProductDescSaved:     "✅ Description: %s\n\nStep 3/4: Price\nPlease enter the product price (e.g., 99.99):",
	ProductPriceSaved:    "✅ Price: %s\n\nStep 4/4: Currency\nPlease enter the currency (USD, EUR, GBP, INR):",
	ProductCreated: "✅ Product Created Successfully!\n\n" +
		"🆔 ID: %s\n" +
		"📝 Name: %s\n" +
		"💰 Price: %s\n" +
		"📄 Description: %s\n\n" +
		"Users can now buy this product using: /buy %s",
	ProductCreateFailed: "❌ Failed to create product. Please try again later.",
	ProductInvalidStep:  "❌ Invalid step. Please start over with /addproduct command.",

	DeleteProductUsage: "❌ Invalid format. Use: /deleteproduct <product_name>\nExample: /deleteproduct Premium Plan\n\nUse /listproducts to see available products.",
	DeleteProductNotFound: "❌ Product \"%s\" not found.\n\n" +
		"Use /listproducts to see available products.\n" +
		"Note: Product names are case-sensitive.",
	ProductDeleted: "✅ Product Deleted Successfully!\n\n" +
		"📝 Name: %s\n" +
		"💰 Price: %s\n" +
		"📄 Description: %s",
	ProductDeleteFailed: "❌ Failed to delete product. Please try again later.",

	ModifyUsage:     "❌ Invalid format. Use: /modifyproduct <product_id>\nUse /listproducts to see product ids.",
	ModifyForbidden: "❌ You can only modify products you created.",
	ModifyStart: "🔧 Modify Product\n\n" +
		"📝 Name: %s\n" +
		"💰 Price: %s\n" +
		"📄 Description: %s\n\n",
	ModifyMenu: "What would you like to modify?\n" +
		"• Type \"name\" to change the product name\n" +
		"• Type \"description\" to change the description\n" +
		"• Type \"price\" to change the price\n" +
		"• Type \"currency\" to change the currency\n" +
		"• Type \"done\" when finished",
	ModifyNext: "What would you like to modify next?\n" +
		"• Type \"name\" to change the product name\n" +
		"• Type \"description\" to change the description\n" +
		"• Type \"price\" to change the price\n" +
		"• Type \"currency\" to change the currency\n" +
		"• Type \"done\" when finished",
	FieldSelected:      "✅ Field selected: %s\n\nStep: Enter new %s\n%s",
	InvalidFieldChoice: "❌ Invalid choice. Please type one of: name, description, price, currency, or done",
	AskNewName:         "Please enter the new product name:",
	AskNewDescription:  "Please enter the new product description:",
	AskNewPrice:        "Please enter the new product price (e.g., 99.99):",
	AskNewCurrency:     "Please enter the new currency (USD, EUR, GBP, INR):",
	NewValueSaved:      "✅ New %s: %s\n\n",
	NoModifications:    "❌ No modifications made. Product modification cancelled.",
	ProductModified: "✅ Product Modified Successfully!\n\n" +
		"📝 Name: %s\n" +
		"💰 Price: %s\n" +
		"📄 Description: %s\n\n" +
		"🕒 Last Updated: %s",
	ModifyFailed:      "❌ Failed to modify product. Please try again later.",
	ModifyInvalidStep: "❌ Invalid step. Please start over with /modifyproduct command.",

	AddAdminUsage:      "❌ Invalid format. Use: /addadmin <user_id>",
	RemoveAdminUsage:   "❌ Invalid format. Use: /removeadmin <user_id>",
	InvalidUserID:      "❌ Invalid user ID format. Please enter a valid numeric user ID.",
	AdminAdded:         "✅ User %d has been added as an admin.",
	AdminExists:        "❌ User %d is already an admin.",
	AdminAddFailed:     "❌ Failed to add admin. Please try again later.",
	AdminRemoved:       "✅ User %d has been removed from admins.",
	CannotRemoveMaster: "❌ Cannot remove master admin.",
	NotAnAdmin:         "❌ User %d is not an admin.",
	AdminRemoveFailed:  "❌ Failed to remove admin. Please try again later.",
	AdminListHeader:    "👑 Admin List:\n\n",
	AdminListMaster:    "👑 %d (Master Admin)\n",
	AdminListItem:      "🔧 %d (Admin)\n",
	AdminListFailed:    "❌ Failed to list admins. Please try again later.",
	AdminStatus: "🔍 Admin Status Check\n\n" +
		"🆔 Your User ID: %d\n" +
		"🔐 Admin Status: %s\n" +
		"👑 Master Admin: %s\n\n",
	AdminStatusMaster: "🎯 Master Admin Commands:\n" +
		"• /addadmin <user_id> - Add admin\n" +
		"• /removeadmin <user_id> - Remove admin\n" +
		"• /listadmins - List all admins\n" +
		"• /addproduct - Add product\n" +
		"• /deleteproduct <name> - Delete product\n" +
		"• /listproducts - List products (admin view)\n",
	AdminStatusAdmin: "🎯 Admin Commands:\n" +
		"• /addproduct - Add product\n" +
		"• /deleteproduct <name> - Delete product\n" +
		"• /listproducts - List products (admin view)\n" +
		"• /modifyproduct <product_id> - Modify product\n",
	AdminStatusNone: "❌ You don't have admin privileges.\n" +
		"Contact the master admin for access.\n\n" +
		"👑 Master Admin ID: %d",
	CheckAdmin: "🔍 Quick Admin Check\n\n" +
		"🆔 User ID: %d\n" +
		"✅ Admin: %s\n" +
		"👑 Master: %s\n",
	CheckAdminYes: "\n🎯 You have admin privileges!",
	CheckAdminNo:  "\n❌ No admin privileges.",
	Yes:           "✅ Yes",
	No:            "❌ No",

	NotifyCompleted: "✅ Payment Completed!\n\n" +
		"Order: %s\n" +
		"Amount: %s\n\n" +
		"Thank you for your payment.",
	NotifyCancelled: "🚫 Payment Cancelled\n\n" +
		"Order: %s\n" +
		"Amount: %s\n\n" +
		"Use /pay <amount> <currency> or /buy <product_id> to try again.",
	NotifyFailed: "❌ Payment Failed\n\n" +
		"Order: %s\n" +
		"Amount: %s\n\n" +
		"Please try again or contact support.",
}

func Get(key TextKey) string {
	return MapText[key]
}

func Format(key TextKey, args ...any) string {
	return fmt.Sprintf(MapText[key], args...)
}

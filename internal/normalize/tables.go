package normalize

// Built-in lookup tables. These mirror the curated data the acquisition layer
// maintains: a known-merchant table (declared order is the documented
// tie-break), a category-synonym table, and an MCC-to-category table.

// Merchant maps a canonical merchant to its MCC, categories and aliases.
type Merchant struct {
	Key         string
	DisplayName string
	MCC         string
	Categories  []string
	Aliases     []string
}

// CategorySynonyms pairs a canonical category with the phrases that resolve
// to it. Slice order is the documented tie-break for substring matches.
type CategorySynonyms struct {
	Category string
	Synonyms []string
}

// Tables bundles every lookup the normalizer needs. Build them once via New,
// which validates the data and rejects malformed entries early.
type Tables struct {
	Merchants     []Merchant
	Categories    []CategorySynonyms
	MCCCategories map[string][]string
}

func defaultMerchants() []Merchant {
	return []Merchant{
		{Key: "macy's", DisplayName: "Macy's", MCC: "5311", Categories: []string{"department_store"}, Aliases: []string{"macys", "macy"}},
		{Key: "amazon", DisplayName: "Amazon", MCC: "5999", Categories: []string{"online_shopping", "general_merchandise"}, Aliases: []string{"amazon.com", "amzn"}},
		{Key: "costco", DisplayName: "Costco", MCC: "5300", Categories: []string{"wholesale", "groceries"}, Aliases: []string{"costco wholesale"}},
		{Key: "walmart", DisplayName: "Walmart", MCC: "5331", Categories: []string{"general_merchandise", "groceries"}, Aliases: []string{"walmart supercenter", "walmart.com"}},
		{Key: "target", DisplayName: "Target", MCC: "5331", Categories: []string{"general_merchandise", "groceries"}, Aliases: []string{"target.com"}},
		{Key: "kroger", DisplayName: "Kroger", MCC: "5411", Categories: []string{"groceries"}, Aliases: []string{"kroger grocery", "kroger.com"}},
		{Key: "whole foods", DisplayName: "Whole Foods", MCC: "5411", Categories: []string{"groceries"}, Aliases: []string{"whole foods market", "wholefoods"}},
		{Key: "delta", DisplayName: "Delta Airlines", MCC: "4511", Categories: []string{"travel", "airline"}, Aliases: []string{"delta air lines", "delta.com"}},
		{Key: "united", DisplayName: "United Airlines", MCC: "4511", Categories: []string{"travel", "airline"}, Aliases: []string{"united airlines", "united.com"}},
		{Key: "american airlines", DisplayName: "American Airlines", MCC: "4511", Categories: []string{"travel", "airline"}, Aliases: []string{"aa.com", "american"}},
	}
}

func defaultCategories() []CategorySynonyms {
	return []CategorySynonyms{
		{Category: "groceries", Synonyms: []string{
			"grocery", "supermarket", "supermarkets", "grocery store", "grocery stores",
			"food store", "food stores", "market", "markets", "food market",
			"grocery shopping", "food shopping", "supermarket shopping",
		}},
		{Category: "gas", Synonyms: []string{
			"gas station", "gas stations", "fuel", "gasoline", "petrol", "petrol station",
			"filling station", "service station", "fuel station", "gas pump",
		}},
		{Category: "restaurants", Synonyms: []string{
			"restaurant", "dining", "dine", "food", "fast food", "fast-food", "fastfood",
			"cafe", "coffee shop", "coffeehouse", "bistro", "eatery", "diner",
			"casual dining", "fine dining", "takeout", "take-out", "delivery",
		}},
		{Category: "travel", Synonyms: []string{
			"travel", "trip", "trips", "vacation", "vacations", "tourism", "tourist",
			"airline", "airlines", "flight", "flights", "airport", "hotel", "hotels",
			"lodging", "accommodation", "resort", "resorts", "cruise", "cruises",
			"car rental", "car rentals", "rental car", "train", "trains", "railway",
		}},
		{Category: "online_shopping", Synonyms: []string{
			"online", "e-commerce", "internet shopping", "online store", "online stores",
			"web shopping", "internet purchase", "online purchase", "ecommerce",
		}},
		{Category: "department_store", Synonyms: []string{
			"department store", "department stores", "retail store", "retail stores",
		}},
		{Category: "wholesale", Synonyms: []string{
			"wholesale club", "warehouse", "warehouse club", "warehouse store",
			"bulk store", "membership warehouse",
		}},
		{Category: "streaming", Synonyms: []string{
			"streaming", "streaming service", "streaming services", "netflix", "spotify",
			"hulu", "disney+", "disney plus", "apple music", "youtube premium",
			"prime video", "hbo", "hbo max", "paramount+", "paramount plus",
		}},
		{Category: "utilities", Synonyms: []string{
			"utility", "utilities", "phone", "internet", "cable", "electricity", "electric",
			"water", "gas utility", "internet service", "phone service", "cable service",
			"cell phone", "mobile phone", "wireless", "internet provider",
		}},
		{Category: "pharmacy", Synonyms: []string{
			"pharmacy", "pharmacies", "drugstore", "drug stores", "cvs", "walgreens",
			"rite aid", "prescription", "prescriptions", "medication", "medications",
		}},
		{Category: "entertainment", Synonyms: []string{
			"entertainment", "movies", "movie", "cinema", "theater", "theatre",
			"concert", "concerts", "sports", "sporting event", "sporting events",
			"amusement park", "theme park", "bowling", "golf", "sports bar",
		}},
		{Category: "shopping", Synonyms: []string{
			"shopping", "retail", "store", "stores", "merchant", "merchants",
			"purchase", "purchases", "buy", "buying",
		}},
		{Category: "transit", Synonyms: []string{
			"transit", "public transit", "public transportation", "metro", "subway",
			"bus", "buses", "uber", "lyft", "rideshare", "ride share", "taxi", "taxis",
		}},
	}
}

func defaultMCCCategories() map[string][]string {
	return map[string][]string{
		"5411": {"groceries"},
		"5541": {"gas"},
		"5542": {"gas"},
		"5812": {"restaurants"},
		"5814": {"restaurants"},
		"5311": {"department_store"},
		"5331": {"general_merchandise"},
		"5300": {"wholesale"},
		"4511": {"travel", "airline"},
		"7011": {"travel", "hotel"},
		"5999": {"online_shopping"},
	}
}

// DefaultTables returns the built-in lookup tables.
func DefaultTables() Tables {
	return Tables{
		Merchants:     defaultMerchants(),
		Categories:    defaultCategories(),
		MCCCategories: defaultMCCCategories(),
	}
}

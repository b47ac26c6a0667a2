package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// Adds the role and phone fields the temple services read off the users
// auth collection.
func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		if err := collection.Fields.AddMarshaledJSONAt(-1, []byte(`{
			"hidden": false,
			"id": "select_users_role",
			"maxSelect": 1,
			"name": "role",
			"presentable": false,
			"required": false,
			"system": false,
			"type": "select",
			"values": ["visitor", "volunteer", "guard", "admin"]
		}`)); err != nil {
			return err
		}

		if err := collection.Fields.AddMarshaledJSONAt(-1, []byte(`{
			"autogeneratePattern": "",
			"hidden": false,
			"id": "text_users_phone",
			"max": 0,
			"min": 0,
			"name": "phone",
			"pattern": "",
			"presentable": false,
			"primaryKey": false,
			"required": false,
			"system": false,
			"type": "text"
		}`)); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection.Fields.RemoveById("select_users_role")
		collection.Fields.RemoveById("text_users_phone")

		return app.Save(collection)
	})
}

package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_bookings0000001",
			"name": "bookings",
			"type": "base",
			"system": false,
			"listRule": "user_id = @request.auth.id",
			"viewRule": "user_id = @request.auth.id",
			"createRule": null,
			"updateRule": null,
			"deleteRule": null,
			"fields": [
				{
					"autogeneratePattern": "[a-z0-9]{15}",
					"hidden": false,
					"id": "text_bookings_id",
					"max": 15,
					"min": 15,
					"name": "id",
					"pattern": "^[a-z0-9]+$",
					"presentable": false,
					"primaryKey": true,
					"required": true,
					"system": true,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_bookings_user_id",
					"max": 0,
					"min": 0,
					"name": "user_id",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_bookings_temple_id",
					"max": 0,
					"min": 0,
					"name": "temple_id",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_bookings_token_number",
					"max": 0,
					"min": 0,
					"name": "token_number",
					"pattern": "",
					"presentable": true,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "date_bookings_visit_date",
					"max": "",
					"min": "",
					"name": "visit_date",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "date"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_bookings_time_slot",
					"max": 0,
					"min": 0,
					"name": "time_slot",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "number_bookings_visitors",
					"max": null,
					"min": 1,
					"name": "number_of_visitors",
					"onlyInt": true,
					"presentable": false,
					"required": true,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "select_bookings_status",
					"maxSelect": 1,
					"name": "status",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "select",
					"values": ["active", "used", "expired", "cancelled"]
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_bookings_qr_code",
					"max": 0,
					"min": 0,
					"name": "qr_code",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": false,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "select_bookings_queue_status",
					"maxSelect": 1,
					"name": "queue_status",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "select",
					"values": ["pending", "in-queue", "completed", "expired"]
				},
				{
					"hidden": false,
					"id": "number_bookings_queue_position",
					"max": null,
					"min": 0,
					"name": "queue_position",
					"onlyInt": true,
					"presentable": false,
					"required": false,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "number_bookings_estimated_wait",
					"max": null,
					"min": 0,
					"name": "estimated_wait",
					"onlyInt": true,
					"presentable": false,
					"required": false,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "bool_bookings_auto_queued",
					"name": "auto_queued",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "autodate_bookings_created",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				},
				{
					"hidden": false,
					"id": "autodate_bookings_updated",
					"name": "updated",
					"onCreate": true,
					"onUpdate": true,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_bookings_token ON bookings (token_number)",
				"CREATE INDEX idx_bookings_slot ON bookings (temple_id, visit_date, time_slot, status)",
				"CREATE INDEX idx_bookings_user ON bookings (user_id)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_bookings0000001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

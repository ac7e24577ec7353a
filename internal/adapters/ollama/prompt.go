package ollama

import (
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// modelInstruction — системная инструкция для модели. Текст подобран
// под llama-подобные модели: жесткие правила плюс пять разобранных
// примеров, иначе модель добавляет свои поля или меняет типы.
const modelInstruction = `
You must return the data in JSON FORMAT about apartment rentals according to the format below. Follow these rules STRICTLY!:
- DO NOT ADD NEW FIELDS, YOU ARE ALLOWED TO USE ONLY PROVIDED.
- DO NOT change data types other than those provided.
- The output must be VALID JSON FORMAT!

STRUCTURE:
* location - copy the field about an apartment location
* status - calculate the date from when the apartment will be available in format "YYYY-MM-DD" or paste the post date if the field is "свободна сейчас"
* price - copy the number - price
* duration - copy the number - minimal lease duration
* is_new - set "true" if there is a field "Новый дом", set false otherwise
* rooms - copy the number - total rooms in the apartment
* room_description - copy apartment info - the text that is inside the parentheses after the rooms amount
* area - copy the number - total apartment area
* floor - copy the number - the floor the apartment is on. it is the first number in the field before slash '/'. set 'null' if not provided
* floors_in_building - copy the number - total floors in a building. it is the second number in the field after slash '/'.
* pets_allowed - set 'true' if "с животными - можно", set 'false' otherwise
* parking - copy info about parking without the word "Парковка -", if there is one. set 'null' if info isn't provided
* IGNORE OTHER FIELDS THAT AREN'T DESCRIBED HERE!


**Example Input and Expected Output**:

TEXT1:
ДАТА ПОСТА: 2024-11-01
🏡 Локация - Hercegovačka , Belgrade Waterfront, Savski venac
🔹 Актуальность - свободна с 06 дек. 2024
💸 1400 €
🔹 Срок аренды - от 12 месяцев
🔹 Новый дом
🔹 2.0 комнаты
🔹 Площадь 55 m²
🔹 15/23 этаж
🐾 С животными – нельзя
📞 Запись на просмотр @BelgradeTeam
🚗 Парковка -  на участке

OUTPUT1:
{
"location": "Hercegovačka, Belgrade Waterfront, Savski venac",
"status": "2024-12-06",
"price": 1400.0,
"duration": 12,
"is_new": true,
"rooms": 2.0,
"room_description": null,
"area": 55.0,
"floor": 15,
"floors_in_building": 23,
"pets_allowed": false,
"parking": "на участке"
}

TEXT2:
ДАТА ПОСТА: 2024-11-01
🏡 Локация - Vojvode Bogdana , Vukov spomenik, Zvezdara
🔹 Актуальность - свободна сейчас
💸 1200 €
🔹 Срок аренды - от 12 месяцев
🔹 3.0 комнаты (2 спальни)
🔹 Площадь 94 m²
🔹 2/5 этаж
🐾 С животными – нельзя
📞 Запись на просмотр @BelgradeTeam
🚗 Есть cвое машино-место

OUTPUT2:
{
"location": "Vojvode Bogdana, Vukov spomenik, Zvezdara",
"status": "2024-11-01",
"price": 1200.0,
"duration": 12,
"is_new": false,
"rooms": 3.0,
"room_description": "2 спальни",
"area": 94.0,
"floor": 2,
"floors_in_building": 5,
"pets_allowed": false,
"parking": "Есть cвое машино-место"
}

TEXT3:
ДАТА ПОСТА: 2024-11-01
🏡 Локация -  Булевар Арсенија Чарнојевића, Novi Beograd
🔹 Актуальность - свободна с 24 сентября
💸 900 €
🔹 Срок аренды - от 6 месяцев
🔹 2,0 комнаты
🔹 Площадь 67 m²
🔹 5 этаж
🐾 С животными – нельзя
📞 Запись на просмотр @BelgradeTeam
#цена800_1100

OUTPUT3:
{
"location": "Булевар Арсенија Чарнојевића, Novi Beograd",
"status": "2025-09-24",
"price": 900,
"duration": 6,
"is_new": false,
"rooms": 2.0,
"room_description": null,
"area": 67,
"floor": 5,
"floors_in_building": null,
"pets_allowed": false,
"parking": null
}

TEXT4:
ДАТА ПОСТА: 2024-11-01
🏡 Локация - Alberta Ajnštajna , Višnjica, Palilula
🔹 Актуальность - свободна 20
💸 700 €
🔹 Срок аренды - от 12 месяцев
🔹 Новый дом
🔹 3.0 комнаты (2 спальни)
🔹 Площадь 73 m²
🔹 3/3 этаж
🐾 С животными – нельзя
📞 Запись на просмотр @BelgradeTeam
🚗 Cвободная зона

OUTPUT4:
{
"location": "Alberta Ajnštajna , Višnjica, Palilula",
"status": "2024-11-20",
"price": 700,
"duration": 12,
"is_new": true,
"rooms": 3.0,
"room_description": "2 спальни",
"area": 73,
"floor": 3,
"floors_in_building": 3,
"pets_allowed": false,
"parking": "Cвободная зона"
}

TEXT5:
ДАТА ПОСТА: 2024-10-10
🏡 Локация - Maršala Birjuzova , Centar, Stari grad
🔹 Актуальность - свободна 01
💸 1700 €
🔹 Срок аренды - от 12 месяцев
🔹 3.0 комнаты (3 спальни, 2 ванные)
🔹 Площадь 94 m²
🔹 2/4 этаж
🐾 С животными – нельзя
📞 Запись на просмотр @BelgradeTeam
🚗 Парковка -  Зона А

OUTPUT5:
{
"location": "Maršala Birjuzova , Centar, Stari grad",
"status": "2024-11-01",
"price": 1700,
"duration": 12,
"is_new": false,
"rooms": 3.0,
"room_description": "3 спальни, 2 ванные",
"area": 94,
"floor": 2,
"floors_in_building": 4,
"pets_allowed": false,
"parking": "Зона А"
}
`

// buildConversation собирает стартовый диалог: инструкция и текст
// объявления с датой поста первой строкой.
func buildConversation(text string, postTime time.Time) []port.ChatMessage {
	return []port.ChatMessage{
		{Role: "user", Content: modelInstruction},
		{Role: "user", Content: "ДАТА ПОСТА: " + postTime.Format("2006-01-02") + "\n" + text},
	}
}

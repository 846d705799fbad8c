package dialog

// Commands and button labels. Button presses come back as plain text
// events, so the labels double as dispatch keys.
const (
	cmdStart      = "/start"
	cmdCancel     = "/cancel"
	cmdAddProduct = "/add_product"

	btnCart        = "🛒 Корзина"
	btnOrder       = "📦 Сделать заказ"
	btnNewCategory = "➕ Создать новую категорию"
)

// callbackAddPrefix precedes "<categoryKey>:<productIndex>" in add-to-cart
// callback data.
const callbackAddPrefix = "add:"

const (
	textWelcome         = "👋 Добро пожаловать в наш магазин!\nВыберите категорию:"
	textCancelled       = "🚫 Действие отменено."
	textCartEmpty       = "🛍️ Ваша корзина пуста."
	textEnterQuantity   = "📝 Введите количество товара:"
	textBadQuantity     = "❌ Пожалуйста, введите корректное количество (целое число больше 0)."
	textProductNotFound = "❌ Товар не найден."

	textEnterName       = "📝 Введите ваше **ФИО**:"
	textEnterPhone      = "📞 Введите ваш **номер телефона**:"
	textBadPhone        = "❌ Некорректный формат номера телефона. Пожалуйста, введите номер еще раз."
	textEnterAddress    = "🏡 Введите ваш **адрес доставки**:"
	textEnterComment    = "✏️ Добавьте **комментарий** (или отправьте -, если без комментария):"
	textNoComment       = "Без комментария"
	textOrderSent       = "📩 **Ваш заказ отправлен администратору!**"
	textOrderSendFailed = "❌ Не удалось отправить заказ. Попробуйте позже."

	textNoPermission     = "❌ У вас нет прав для выполнения этой команды."
	textChooseCategory   = "📂 Выберите категорию для нового товара или создайте новую:"
	textEnterNewCategory = "📝 Введите название новой категории:"
	textCategoryExists   = "❌ Такая категория уже существует, попробуйте другое название."
	textCategoryNotFound = "❌ Категория не найдена, попробуйте снова."
	textCategoryMissing  = "❌ Ошибка: категория не найдена."
	textEnterProductName = "📝 Введите **название товара**:"
	textEnterPrice       = "💰 Введите **цену товара** (в рублях):"
	textBadPrice         = "❌ Пожалуйста, введите корректную цену (целое число больше 0)."
	textEnterDescription = "📝 Введите **описание товара**:"
	textSendPhoto        = "📷 Отправьте **фото товара**:"
	textNeedPhoto        = "❌ Пожалуйста, отправьте фото."
)

const (
	fmtCategoryHeader  = "📦 Товары в категории %s:"
	fmtProductCaption  = "%s\n%s\n💰 Цена: %d руб."
	fmtAddToCartButton = "➕ Добавить в корзину 🛍️"
	fmtAddedToCart     = "✅ %s (x%d) добавлен в корзину!"
	fmtCategoryCreated = "✅ Категория **%s** создана!\nТеперь введите **название товара**:"
	fmtProductAdded    = "✅ Товар **%s** успешно добавлен в каталог в категорию %s!"
	fmtCartLine        = "🔹 %s (x%d) - %d руб."
	fmtCartTotal       = "\n💰 **Общая сумма:** %d руб."

	cartHeader = "🛒 **Ваша корзина:**\n"
)

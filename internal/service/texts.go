package service

// Fixed Spanish replies.
const (
	WelcomeText = "¡Hola! ¿Cómo estás? Soy el asistente de Kavak 🤖🚗\n\n" +
		"Bienvenido a Kavak, será un placer atenderte. ¿En qué te puedo ayudar hoy?\n" +
		"• Buscar autos (ej. *busca sentra 2021*)\n" +
		"• Filtrar por precio (ej. *entre 250k y 300k*)\n" +
		"• Cotizar mensualidades (ej. *cotiza ID 320505 con 40 mil pesos*)\n" +
		"• Ver más resultados (ej. *ver 3 más*)\n" +
		"• Conocer nuestra propuesta de valor (ej. *¿Por qué Kavak?*)\n\n" +
		"Escribe *menu* o *ayuda* para ver estas opciones nuevamente."

	ValuePropText = "*La propuesta de valor de Kavak se basa en:*\n" +
		"1. *Confianza y seguridad* → inspecciones rigurosas, certificación y garantías extendidas.\n" +
		"2. *Financiamiento accesible* → créditos más justos mediante Kavak Capital.\n" +
		"3. *Experiencia integrada y conveniente* → proceso end-to-end desde inspección hasta entrega.\n" +
		"4. *Uso intensivo de tecnología y datos* → valuaciones justas y eficiencia operativa.\n" +
		"5. *Atención al cliente y postventa de calidad* → políticas claras, reembolsos y opciones flexibles.\n" +
		"6. *Inventario amplio y diversificado* → autos seminuevos en distintas gamas y precios.\n" +
		"\n👉 ¿Quieres saber más? Consulta la información oficial de Kavak en:\nhttps://www.kavak.com/mx/blog/sedes-de-kavak-en-mexico"

	QuoteHelpText = "Para cotizar necesito *precio del auto* y *enganche*.\n" +
		"Puedes decir, por ejemplo:\n" +
		"• cotiza 323668 con 40k\n" +
		"• cotiza 323668 con 40k a 48 meses\n" +
		"• mensualidades *para un auto de* $350,000 *con* 50k\n" +
		"• cotiza *un auto de* $350,000 *con* 50k *de enganche* a 48 meses"

	// detailsAfterQuoteFormat takes down payment (formatted), term and rate percent.
	detailsAfterQuoteFormat = "*Requisitos y pasos (pueden variar):*\n" +
		"• Identificación oficial vigente.\n" +
		"• Comprobante de domicilio (no mayor de 3 meses).\n" +
		"• Comprobante de ingresos (últimos 3 recibos/estados).\n" +
		"• Enganche desde $%s (sujeto a aprobación).\n" +
		"• Plazo seleccionado: %d meses • Tasa ref.: %.1f%% anual.\n\n" +
		"*Siguiente paso:*\n" +
		"1) Pre-aprobación.\n" +
		"2) Validación de documentos.\n" +
		"3) Firma y entrega.\n\n" +
		"¿Quieres que te contacte un asesor de Kavak? Escribe: `contacto <tu nombre> <correo>` " +
		"o `llámame al <tu número>`."

	confirmYesNoContextText = "¿De qué te comparto detalles? Puedes decir `detalles 1` o `cotiza <ID>`."
	confirmNoText           = "¡Perfecto! ¿Ajustamos precio, año o prefieres otra marca/modelo?"

	noPriorSearchText = "No tengo una búsqueda previa. Dime qué buscas, por ejemplo: *busca versa 2020*."
	endOfResultsText  = "Ya no hay más resultados. ¿Ajustamos presupuesto o marca/modelo?"

	unknownCarRefText = "No pude identificar el auto. Usa `cotiza <número>` sobre los resultados actuales o `cotiza <ID>`."
	carNotFoundFormat = "No encontré el auto con ID %s."
	rateNoteFormat    = "*Nota:* La tasa la define Kavak y puede variar; estándar %.1f%%."
	contactCTAText    = "Si quieres avanzar, escribe: `contacto <tu nombre> <correo>` o envíame *tu teléfono* con: `llámame al <número>`."

	contactMissingText = "Perfecto. Compárteme al menos tu *correo* (ej. `contacto Ana ana@mail.com`) o tu *teléfono* (ej. `llámame al +52...`)."
	contactFailedText  = "Recibí tus datos pero no pude registrarlos en este momento. Intenta de nuevo en unos minutos."

	handoffText           = "¿Quieres que te ponga en contacto con un agente de Kavak?"
	knowledgeNoHitsText   = "No encontré información relacionada con tu criterio de búsqueda. " + handoffText
	knowledgeNoModelText  = "No tengo acceso al modelo de lenguaje. A continuación, el contexto relevante encontrado:\n\n"
	knowledgeDownText     = "La base de conocimiento no está disponible por ahora."
	knowledgeErrorText    = "No pude consultar la base de conocimiento en este momento."
	internalErrorText     = "Tuve un problema procesando tu mensaje. ¿Puedes intentarlo de nuevo?"
	stateUnavailableText  = "Estoy recibiendo muchos mensajes a la vez. ¿Puedes repetir tu último mensaje?"
)

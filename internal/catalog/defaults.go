package catalog

// Default returns the built-in monitoring-guide catalog with the default
// origin and age column names.
func Default() *Catalog {
	return NewDefault(DefaultOriginColumn, DefaultAgeColumn)
}

// NewDefault returns the built-in catalog using custom origin and age
// column names. The two columns keep their canonical positions.
func NewDefault(originColumn, ageColumn string) *Catalog {
	if originColumn == "" {
		originColumn = DefaultOriginColumn
	}
	if ageColumn == "" {
		ageColumn = DefaultAgeColumn
	}
	return New(originColumn, ageColumn, DefaultFields(originColumn, ageColumn))
}

// DefaultFields lists the monitoring-guide fields in canonical column order.
func DefaultFields(originColumn, ageColumn string) []Field {
	s := func(name string) Field { return Field{Name: name, Type: TypeString} }
	d := func(name string) Field { return Field{Name: name, Type: TypeDate} }
	i := func(name string) Field { return Field{Name: name, Type: TypeInteger} }
	m := func(name string) Field { return Field{Name: name, Type: TypeDecimal} }
	multi := func(name string, limit int) Field {
		return Field{Name: name, Type: TypeString, Merge: MergeIndexed, MaxOccurs: limit}
	}

	return []Field{
		s(originColumn),

		// Guide identification
		s("tipoRegistro"),
		s("versaoTISSPrestador"),
		s("formaEnvio"),

		// Executor
		s("CNES"),
		s("identificadorExecutante"),
		s("codigoCNPJ_CPF"),
		s("municipioExecutante"),

		// Beneficiary
		s("numeroCartaoNacionalSaude"),
		s("cpfBeneficiario"),
		s("sexo"),
		d("dataNascimento"),
		s("municipioResidencia"),
		s("numeroRegistroPlano"),

		// Event
		s("tipoEventoAtencao"),
		s("origemEventoAtencao"),
		i("numeroGuia_prestador"),
		i("numeroGuia_operadora"),
		i("identificacaoReembolso"),
		s("formaRemuneracao"),
		m("valorRemuneracao"),
		d("dataAutorizacao"),
		d("dataRealizacao"),
		d("dataProtocoloCobranca"),
		d("dataPagamento"),
		d("dataProcessamentoGuia"),
		s("tipoConsulta"),
		s("indicacaoRecemNato"),
		s("indicacaoAcidente"),
		s("caraterAtendimento"),
		s("tipoAtendimento"),
		s("regimeAtendimento"),

		// Guide totals
		m("valorTotalInformado"),
		m("valorProcessado"),
		m("valorTotalPagoProcedimentos"),
		m("valorTotalDiarias"),
		m("valorTotalTaxas"),
		m("valorTotalMateriais"),
		m("valorTotalOPME"),
		m("valorTotalMedicamentos"),
		m("valorGlosaGuia"),
		m("valorPagoGuia"),
		m("valorPagoFornecedores"),
		m("valorTotalTabelaPropria"),
		m("valorTotalCoParticipacao"),

		// Procedure
		s("codigoTabela"),
		s("grupoProcedimento"),
		s("quantidadeInformada"),
		s("codigoProcedimento"),
		m("valorInformado"),
		m("valorPagoProc"),
		s("quantidadePaga"),
		m("valorPagoFornecedor"),
		m("valorCoParticipacao"),
		s("unidadeMedida"),

		// Hospitalization and outcome
		s("numeroGuiaSPSADTPrincipal"),
		s("tipoInternacao"),
		s("regimeInternacao"),
		multi("diagnosticoCID", 4),
		s("tipoFaturamento"),
		s("motivoSaida"),
		s("cboExecutante"),
		d("dataFimPeriodo"),
		multi("declaracaoObito", 8),
		multi("declaracaoNascido", 8),
		i(ageColumn),

		// Intermediary operator
		s("registroANSOperadoraIntermediaria"),
		s("tipoAtendimentoOperadoraIntermediaria"),

		// Header
		s("tipoTransacao"),
		s("numeroLote"),
		s("competenciaLote"),
		d("dataRegistroTransacao"),
		s("horaRegistroTransacao"),
		s("registroANS"),
		s("versaoPadrao"),

		// Late additions
		s("identificacaoValorPreestabelecido"),
		s("guiaSolicitacaoInternacao"),
		d("dataSolicitacao"),
		d("dataInicialFaturamento"),
		s("saudeOcupacional"),
		s("diariasAcompanhante"),
		s("diariasUTI"),
		s("CNPJFornecedor"),
		s("registroANSOperadoraIntermediaria_proc"),
		s("tipoAtendimentoOperadoraIntermediaria_proc"),
	}
}
